package main

import (
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		shown := *cfg
		shown.Store.DatabaseURL = redactURL(shown.Store.DatabaseURL)

		out, err := yaml.Marshal(shown)
		if err != nil {
			return eris.Wrap(err, "render config")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// redactURL hides credentials in a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
