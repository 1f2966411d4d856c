package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/medcart/app/repositories"
	"github.com/shashiranjanraj/medcart/app/routes"
	"github.com/shashiranjanraj/medcart/app/services"
	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/internal/server"
	"github.com/shashiranjanraj/medcart/pkg/auth"
	"github.com/shashiranjanraj/medcart/pkg/router"
	"github.com/shashiranjanraj/medcart/pkg/ws"
)

// medcart serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server (and gRPC health when GRPC_PORT is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			config.Set("APP_PORT", port)
		}
		return server.Start()
	},
}

// medcart route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoutes(cmd.OutOrStdout())
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "HTTP port (overrides APP_PORT)")
}

// printRoutes mounts the routes over in-memory services; nothing is
// connected.
func printRoutes(out io.Writer) error {
	tokens := auth.FromConfig()
	r := router.New()
	err := routes.Register(r, routes.Deps{
		Services: services.New(services.Deps{Repos: repositories.NewMemory(), Tokens: tokens}),
		Tokens:   tokens,
		Hub:      ws.NewHub(),
	})
	if err != nil {
		return err
	}

	infos := r.Routes()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No routes registered.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}

