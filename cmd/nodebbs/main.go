package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nodebbs/internal/app"
)

var cfgFile string

func main() {
	configPath := os.Getenv("NODEBBS_CONFIG")
	if configPath == "" {
		configPath = "config.yml"
	}

	var rootCmd = &cobra.Command{
		Use:     "nodebbs",
		Short:   "NodeBBS multi-node bulletin board host",
		Version: app.Version,
		Run: func(cmd *cobra.Command, args []string) {
			bootAppForServer(cmd, args)
			startServer(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", configPath, "config file")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(probeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
