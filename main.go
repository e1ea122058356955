package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/amsen20/placebid/internal/config"
	"github.com/amsen20/placebid/internal/gui"
	"github.com/amsen20/placebid/internal/registry"
	"github.com/amsen20/placebid/logging"
	"github.com/amsen20/placebid/sim"
	"github.com/amsen20/placebid/statistics"
	"gopkg.in/yaml.v2"
)

var log = logging.Get()

func main() {
	config_file_path := flag.String("config_file", "", "Path to config file")
	flag.Parse()

	yamlFile, err := os.ReadFile(*config_file_path)
	if err != nil {
		log.Err(err).Msgf("could not load config")
		os.Exit(1)
	}

	if err := yaml.UnmarshalStrict(yamlFile, &config.AuctionGeneralConfig); err != nil {
		log.Err(err).Msgf("could not load config")
		os.Exit(1)
	}

	config.AuctionGeneralConfig.FillDefaults()
	if err := config.AuctionGeneralConfig.Validate(); err != nil {
		log.Err(err).Msg("config is not usable")
		os.Exit(1)
	}

	var reg registry.Registry
	switch config.AuctionGeneralConfig.RegistryKind {
	case "static":
		workerIDs := make([]string, config.AuctionGeneralConfig.Workers)
		for i := range workerIDs {
			workerIDs[i] = fmt.Sprintf("worker-%02d", i)
		}
		reg = registry.NewStaticRegistry(workerIDs)
	case "kubernetes":
		reg, err = registry.NewKubeRegistry()
		if err != nil {
			log.Err(err).Msg("could not init the registry")
			os.Exit(1)
		}
	default:
		log.Error().Msg("registry kind is not recognized")
		os.Exit(1)
	}

	statistics.Init()

	harness, err := sim.New(config.AuctionGeneralConfig, reg)
	if err != nil {
		log.Err(err).Msg("could not initiate the simulation")
		os.Exit(1)
	}

	report, err := harness.Run(context.Background())
	if err != nil {
		log.Err(err).Msg("could not run the simulation")
		os.Exit(1)
	}

	fmt.Println(report.Display())
	fmt.Println(statistics.Display())

	reportPath := fmt.Sprintf("./sim/%s.json", config.AuctionGeneralConfig.Strategy)
	if err := report.Write(reportPath); err != nil {
		log.Err(err).Msgf("could not write report to %s", reportPath)
	}

	if !config.AuctionGeneralConfig.GuiEnabled {
		return
	}

	reportRequestStream := make(chan struct{})
	reportStream := make(chan *sim.Report)
	go func() {
		for range reportRequestStream {
			reportStream <- report
		}
	}()

	gui.SetUp(gui.Bridge{
		ReportRequestStream: reportRequestStream,
		ReportStream:        reportStream,
	})
	gui.Run()
}
