package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/9seconds/relaymap/export"
)

const version = "0.1.0"

type pipelineFlags struct {
	consensus     *string
	geoDB         *string
	distance      *float64
	weight        *bool
	provider      *string
	workers       *int
	requiredFlags *[]string
}

var (
	app = kingpin.New(
		"relaymap",
		"Clusterize Tor relays from a consensus document by their geolocation")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("RELAYMAP_DEBUG").
		Bool()
	configFile = app.Flag("config", "Path to the config.").
			Short('c').
			Envar("RELAYMAP_CONFIG").
			ExistingFile()

	clusterCommand = app.Command("cluster", "Build clusters and write them out.")
	clusterFlags   = addPipelineFlags(clusterCommand)
	clusterFormat  = clusterCommand.Flag("format", "Output format.").
			Short('f').
			Enum(export.FormatJSON, export.FormatGeoJSON)
	clusterOutput = clusterCommand.Flag("output", "Path to the output file. Stdout is used if not set.").
			Short('o').
			String()

	serveCommand = app.Command("serve", "Build clusters and serve them over HTTP.")
	serveFlags   = addPipelineFlags(serveCommand)
	serveListen  = serveCommand.Flag("listen", "host:port to listen on.").
			Short('l').
			String()
)

func addPipelineFlags(cmd *kingpin.CmdClause) pipelineFlags {
	return pipelineFlags{
		consensus: cmd.Arg("consensus", "Path to the consensus document.").
			Required().
			String(),
		geoDB: cmd.Arg("geodb", "Path to the geolocation database.").
			String(),
		distance: cmd.Flag("eps", "Maximal distance between neighbour relays, in degrees.").
			Float64(),
		weight: cmd.Flag("weight", "Weight relays by their bandwidth.").
			Short('w').
			Bool(),
		provider: cmd.Flag("provider", "Geolocation database type.").
			Short('p').
			String(),
		workers: cmd.Flag("workers", "Number of parallel lookups.").
			Int(),
		requiredFlags: cmd.Flag("require-flag", "Use only relays with this flag. May be repeated.").
			Strings(),
	}
}

func init() {
	app.Version(version)
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.WarnLevel)
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	conf, err := loadConfig(*configFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	ctx, cancel := makeRootContext()
	defer cancel()

	switch command {
	case clusterCommand.FullCommand():
		applyPipelineFlags(conf, clusterFlags)
		if *clusterFormat != "" {
			conf.Output.Format = *clusterFormat
		}
		if *clusterOutput != "" {
			conf.Output.Path = *clusterOutput
		}
		err = runCluster(ctx, conf, *clusterFlags.consensus)
	case serveCommand.FullCommand():
		applyPipelineFlags(conf, serveFlags)
		if *serveListen != "" {
			conf.Listen = *serveListen
		}
		err = runServe(ctx, conf, *serveFlags.consensus)
	}

	if err != nil {
		log.Fatal(err.Error())
	}
}
