// Development web server for the go-ttsweb page
package main

import (
	"log"

	"github.com/go-while/go-ttsweb/internal/config"
	"github.com/spf13/cobra"
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	if err := newRootCmd(config.NewDefaultConfig(), runWebServer).Execute(); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}
} // end main

// newRootCmd wires the command-line flags onto webConfig. Every flag is
// optional: with none given the server runs on 127.0.0.1:5000 with debug on.
func newRootCmd(webConfig *config.WebConfig, run func(*config.WebConfig) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "web",
		Short:         "go-ttsweb development web server",
		Long:          "Serves the TTS page template on / and the static directory on /static.",
		Version:       config.AppVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(webConfig)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&webConfig.ListenHost, "host", webConfig.ListenHost, "Web server listen address")
	flags.IntVar(&webConfig.ListenPort, "port", webConfig.ListenPort, "Web server port")
	flags.BoolVar(&webConfig.Debug, "debug", webConfig.Debug, "Debug mode: detailed error pages and browser reload on file changes (--debug=false to disable)")
	flags.StringVar(&webConfig.TemplateDir, "templates", webConfig.TemplateDir, "Template directory")
	flags.StringVar(&webConfig.StaticDir, "static", webConfig.StaticDir, "Static asset directory served on /static (empty disables)")
	flags.StringVar(&webConfig.IndexTemplate, "index", webConfig.IndexTemplate, "Template rendered on /")
	flags.BoolVar(&webConfig.SSL, "ssl", webConfig.SSL, "Enable SSL")
	flags.StringVar(&webConfig.CertFile, "cert", webConfig.CertFile, "SSL certificate file (/path/to/fullchain.pem)")
	flags.StringVar(&webConfig.KeyFile, "key", webConfig.KeyFile, "SSL key file (/path/to/privkey.pem)")
	flags.StringVar(&webConfig.PprofAddr, "pprof", webConfig.PprofAddr, "Serve the cpu/mem profiler on this address (e.g. 127.0.0.1:51111)")
	flags.DurationVar(&webConfig.ShutdownTimeout, "shutdown-timeout", webConfig.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	return cmd
}
