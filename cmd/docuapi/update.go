package main

import (
	"fmt"
	"os"

	"github.com/blackcoderx/docuapi/pkg/tui"
	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const releaseRepo = "blackcoderx/docuapi"

var updateYes bool

func init() {
	updateCmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "update without asking")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update DocuAPI to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		if version == "dev" {
			fmt.Println("You are running a development version of DocuAPI. Update is not supported.")
			return nil
		}

		latest, found, err := selfupdate.DetectLatest(releaseRepo)
		if err != nil {
			return fmt.Errorf("error occurred while detecting version: %w", err)
		}

		v, err := semver.Parse(version)
		if err != nil {
			return fmt.Errorf("error parsing current version '%s': %w", version, err)
		}

		if !found || latest.Version.LTE(v) {
			fmt.Println("Current version is the latest")
			return nil
		}

		if !updateYes {
			ok, err := tui.Confirm(fmt.Sprintf("Update to %s?", latest.Version))
			if err != nil || !ok {
				return err
			}
		}

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("could not locate executable path: %w", err)
		}
		if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
			return fmt.Errorf("error occurred while updating binary: %w", err)
		}
		fmt.Println(tui.SuccessStyle.Render(tui.SuccessPrefix + "Successfully updated to version " + latest.Version.String()))
		return nil
	},
}
