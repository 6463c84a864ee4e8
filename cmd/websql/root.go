package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dan-strohschein/websql-driver/client"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "websql",
		Short: "websql - command-line client for WebSQL batch endpoints",
		Long: `websql - command-line client for WebSQL batch endpoints.

Every flag can also be set through an environment variable prefixed with
"WEBSQL_", e.g. WEBSQL_URL=http://localhost:12321/mydb websql exec ...
Flags take precedence over environment variables.
`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	cmd.PersistentFlags().String("url", "", "endpoint URL of the target database, e.g. http://localhost:12321/mydb")
	cmd.PersistentFlags().String("auth", "none", "authentication mode: none, inline or basic")
	cmd.PersistentFlags().StringP("user", "u", "", "username for inline or basic auth")
	cmd.PersistentFlags().StringP("password", "p", "", "password for inline or basic auth")
	cmd.PersistentFlags().Duration("timeout", 30*time.Second, "request timeout")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging and verbose errors")

	viper.SetEnvPrefix("WEBSQL")
	viper.AutomaticEnv()
	viper.BindPFlags(cmd.PersistentFlags())

	cmd.AddCommand(newExecCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// clientOptions builds ClientOptions from the resolved flag/env configuration.
func clientOptions() (*client.ClientOptions, error) {
	url := viper.GetString("url")
	if url == "" {
		return nil, fmt.Errorf("no endpoint URL given (use --url or WEBSQL_URL)")
	}

	opts := client.DefaultOptions()
	opts.URL = url
	opts.User = viper.GetString("user")
	opts.Password = viper.GetString("password")
	opts.DefaultTimeout = viper.GetDuration("timeout")
	opts.DebugMode = viper.GetBool("debug")
	if opts.DebugMode {
		opts.LogLevel = "DEBUG"
	}

	switch strings.ToLower(viper.GetString("auth")) {
	case "", "none":
		opts.AuthMode = client.AuthNone
	case "inline":
		opts.AuthMode = client.AuthInline
	case "basic":
		opts.AuthMode = client.AuthBasic
	default:
		return nil, fmt.Errorf("unknown auth mode %q (expected none, inline or basic)", viper.GetString("auth"))
	}

	return &opts, nil
}
