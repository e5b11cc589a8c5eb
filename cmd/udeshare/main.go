package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfgfile string
)

func main() {
	c := &cobra.Command{
		Use:           "udeshare",
		Short:         "Udemy account sharing client",
		Version:       fmt.Sprintf("%s - build %.7s @ %s", version, revision, date),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c.PersistentFlags().StringVarP(&cfgfile, "config", "c", "", "Configuration file")

	coursesCmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the course cache")
	cookiesCmd.AddCommand(cookiesClearCmd)

	c.AddCommand(loginCmd)
	c.AddCommand(logoutCmd)
	c.AddCommand(statusCmd)
	c.AddCommand(coursesCmd)
	c.AddCommand(openCmd)
	c.AddCommand(cookiesCmd)

	if err := c.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
