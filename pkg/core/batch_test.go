package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls []string
	fn    func(api storage.APIDescriptor) Outcome
}

func (f *fakeRunner) Execute(_ context.Context, api storage.APIDescriptor, _, _ map[string]string) Outcome {
	f.calls = append(f.calls, api.Name)
	return f.fn(api)
}

func TestBatch_EmptyIsRejected(t *testing.T) {
	_, err := NewBatch(&fakeRunner{}).Run(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestBatch_ThreeCallsOneFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/b") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	apis := []storage.APIDescriptor{
		{Name: "a", Method: "GET", URL: srv.URL + "/a"},
		{Name: "b", Method: "GET", URL: srv.URL + "/b"},
		{Name: "c", Method: "GET", URL: srv.URL + "/c"},
	}

	var progress []int
	res, err := NewBatch(NewExecutor(),
		WithBatchDelay(time.Millisecond),
		WithProgress(func(done, total int, _ BatchItem) {
			assert.Equal(t, 3, total)
			progress = append(progress, done)
		}),
	).Run(context.Background(), apis, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Results, 3)
	assert.Equal(t, "b", res.Results[1].API)
	assert.False(t, res.Results[1].Success)
	assert.Equal(t, FailureRemoteError, res.Results[1].Failure)
	assert.Equal(t, []int{1, 2, 3}, progress)
}

func TestBatch_PanicIsRecorded(t *testing.T) {
	r := &fakeRunner{fn: func(api storage.APIDescriptor) Outcome {
		if api.Name == "boom" {
			panic("kaboom")
		}
		return Outcome{Success: true}
	}}

	apis := []storage.APIDescriptor{{Name: "ok"}, {Name: "boom"}, {Name: "after"}}
	res, err := NewBatch(r, WithBatchDelay(0)).Run(context.Background(), apis, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok", "boom", "after"}, r.calls)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, "kaboom", res.Results[1].Error)
	assert.True(t, res.Results[2].Success)
}

func TestBatch_CeilingMarksRemainingAsFailed(t *testing.T) {
	r := &fakeRunner{fn: func(storage.APIDescriptor) Outcome {
		time.Sleep(30 * time.Millisecond)
		return Outcome{Success: true}
	}}

	apis := []storage.APIDescriptor{{Name: "1"}, {Name: "2"}, {Name: "3"}}
	res, err := NewBatch(r, WithBatchDelay(0), WithBatchTimeout(10*time.Millisecond)).
		Run(context.Background(), apis, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, r.calls)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 2, res.Failed)
	assert.Contains(t, res.Results[2].Error, "lote interrumpido")
}

func TestBatch_DelayOnlyBetweenItems(t *testing.T) {
	var stamps []time.Time
	r := &fakeRunner{fn: func(storage.APIDescriptor) Outcome {
		stamps = append(stamps, time.Now())
		return Outcome{Success: true}
	}}

	start := time.Now()
	_, err := NewBatch(r, WithBatchDelay(100*time.Millisecond)).
		Run(context.Background(), []storage.APIDescriptor{{Name: "1"}, {Name: "2"}}, nil, nil)
	elapsed := time.Since(start)
	require.NoError(t, err)

	require.Len(t, stamps, 2)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 100*time.Millisecond)
	assert.Less(t, elapsed, 190*time.Millisecond)
}

func TestValidateAPI(t *testing.T) {
	v := ValidateAPI(storage.APIDescriptor{
		Method:              "POST",
		URL:                 "https://api.example.com/x",
		Headers:             storage.StringMap{"Accept": "application/json"},
		RequiredCredentials: []string{"api_key"},
	})
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Issues)
	assert.Empty(t, v.Warnings)

	v = ValidateAPI(storage.APIDescriptor{Method: "FETCH", URL: "not a url"})
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{"URL inválida o mal formada", "Método HTTP inválido"}, v.Issues)
	assert.Equal(t, []string{"No se especificaron headers", "No se requieren credenciales para esta API"}, v.Warnings)
}
