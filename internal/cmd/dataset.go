package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/Alia5/studiogen/internal/collab"
	"github.com/Alia5/studiogen/internal/collab/dataset"
	"github.com/Alia5/studiogen/internal/collab/stats"
	"github.com/Alia5/studiogen/internal/log"
)

type Dataset struct {
	Dataset   string            `help:"Dataset identifier" default:"consommation-annuelle-d-electricite-et-gaz-par-commune" env:"STUDIOGEN_DATASET"`
	BaseURL   string            `help:"Records v1 search endpoint" default:"https://opendata.agenceore.fr/api/records/1.0/search/" env:"STUDIOGEN_DATASET_URL"`
	APIKey    string            `help:"Opendatasoft API key" env:"ODS_API_KEY,STUDIOGEN_API_KEY"`
	Commune   string            `help:"Municipality name (refine.nom_commune)"`
	Insee     string            `help:"Municipality INSEE code, matched against the known code fields"`
	Dept      string            `name:"departement" help:"Department name (refine.nom_departement)"`
	Region    string            `help:"Region name (refine.nom_region)"`
	Year      int               `help:"Year (refine.annee)"`
	Naf       string            `help:"NAF code (refine.code_naf)"`
	Category  string            `name:"categorie" help:"Consumption category (refine.categorie_consommation)"`
	Refine    map[string]string `help:"Extra refine filters as field=value"`
	Rows      int               `help:"Rows per page" default:"10"`
	Start     int               `help:"Offset of the first row"`
	Timeout   time.Duration     `help:"HTTP timeout" default:"20s" env:"STUDIOGEN_DATASET_TIMEOUT"`
	Debug     bool              `help:"Include the final URL and HTTP details in the output"`
	MeanField string            `help:"Print the mean of this numeric field over the returned records"`
}

// Run is called by Kong when the dataset command is executed.
func (d *Dataset) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := dataset.New(collab.NewClient(logger, rawLogger, d.Timeout), dataset.Options{
		BaseURL: d.BaseURL,
		APIKey:  d.APIKey,
	})
	if err != nil {
		return err
	}
	return d.run(ctx, client, os.Stdout)
}

func (d *Dataset) request() dataset.Request {
	refine := map[string]string{
		"nom_commune":            d.Commune,
		"nom_departement":        d.Dept,
		"nom_region":             d.Region,
		"code_naf":               d.Naf,
		"categorie_consommation": d.Category,
	}
	if d.Year != 0 {
		refine["annee"] = strconv.Itoa(d.Year)
	}
	for k, v := range d.Refine {
		refine[k] = v
	}
	return dataset.Request{
		Dataset: d.Dataset,
		Refine:  refine,
		Insee:   d.Insee,
		Rows:    d.Rows,
		Start:   d.Start,
		Debug:   d.Debug,
	}
}

func (d *Dataset) run(ctx context.Context, client *dataset.Client, w io.Writer) error {
	res, err := client.Search(ctx, d.request())
	if err != nil {
		return err
	}
	if err := writeJSON(w, res); err != nil {
		return err
	}

	if d.MeanField != "" {
		values, err := dataset.NumericField(res.Records, d.MeanField)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "mean %s: %g (%d records)\n", d.MeanField, stats.Mean(values), len(values))
	}
	return nil
}
