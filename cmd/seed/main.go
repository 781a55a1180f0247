package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/superpool/superpool/internal/core"
	"github.com/superpool/superpool/internal/platform/config"
	"github.com/superpool/superpool/internal/platform/logging"
	"github.com/superpool/superpool/internal/store/dynamo"
	"github.com/superpool/superpool/internal/store/mongo"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env, "superpool-seed")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var catalog core.CatalogRepo

	switch cfg.DBType {
	case "mongo":
		client, err := mongo.NewClient(cfg)
		if err != nil {
			log.Error("failed to connect to MongoDB", "err", err)
			os.Exit(1)
		}
		defer client.Close(ctx)

		if err := mongo.EnsureIndexes(ctx, client.DB); err != nil {
			log.Error("failed to ensure indexes", "err", err)
			os.Exit(1)
		}
		catalog = mongo.NewCatalogRepo(client.DB, 5*time.Second)

	case "dynamodb":
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			log.Error("failed to connect to DynamoDB", "err", err)
			os.Exit(1)
		}
		if err := dynamo.EnsureTables(ctx, client.DB, log); err != nil {
			log.Error("failed to ensure tables", "err", err)
			os.Exit(1)
		}
		catalog = dynamo.NewCatalogRepo(client.DB)

	default:
		log.Error("unsupported DB_TYPE", "db_type", cfg.DBType)
		os.Exit(1)
	}

	log.Info("seeding products")
	seedProducts(ctx, catalog)
	log.Info("done seeding")
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProducts(ctx context.Context, catalog core.CatalogRepo) {
	products := []core.Product{
		{
			Provider: "Superpool Underwriting",
			Name:     "Family Shield Health Plan",
			Category: core.CategoryHealth,
			Tiers: []core.ProductTier{
				{
					Name:        "Basic",
					BasePremium: d("1500.00"),
					Coverages: []core.Coverage{
						{Name: "Outpatient Care", Limit: d("250000.00")},
						{Name: "Emergency Care", Limit: d("500000.00")},
					},
				},
				{
					Name:        "Gold",
					BasePremium: d("4200.00"),
					Coverages: []core.Coverage{
						{Name: "Outpatient Care", Limit: d("1000000.00")},
						{Name: "Emergency Care", Limit: d("2000000.00")},
						{Name: "Specialist Consultations", Limit: d("500000.00")},
					},
					Benefits: "Annual health screening included",
				},
			},
		},
		{
			Provider: "Superpool Underwriting",
			Name:     "HomeSafe Dwelling Cover",
			Category: core.CategoryHome,
			Tiers: []core.ProductTier{
				{
					Name:        "Basic",
					BasePremium: d("2000.00"),
					Coverages: []core.Coverage{
						{Name: "Fire and Allied Perils", Limit: d("5000000.00")},
					},
				},
				{
					Name:        "Gold",
					BasePremium: d("3500.00"),
					Coverages: []core.Coverage{
						{Name: "Fire and Allied Perils", Limit: d("15000000.00")},
						{Name: "Burglary and Theft", Limit: d("3000000.00")},
					},
				},
			},
		},
		{
			Provider: "Superpool Underwriting",
			Name:     "Third-Party Motor Cover",
			Category: core.CategoryAuto,
			Tiers: []core.ProductTier{
				{
					Name:        "Standard",
					BasePremium: d("15000.00"),
					Coverages: []core.Coverage{
						{Name: "Third-Party Liability", Limit: d("3000000.00")},
					},
				},
				{
					Name:        "Comprehensive",
					BasePremium: d("65000.00"),
					Coverages: []core.Coverage{
						{Name: "Third-Party Liability", Limit: d("5000000.00")},
						{Name: "Own Damage", Limit: d("10000000.00")},
						{Name: "Theft", Limit: d("10000000.00")},
					},
				},
			},
		},
		{
			Provider: "Superpool Underwriting",
			Name:     "Wanderer Travel Cover",
			Category: core.CategoryTravel,
			Tiers: []core.ProductTier{
				{
					Name:        "Single Trip",
					BasePremium: d("8500.00"),
					Coverages: []core.Coverage{
						{Name: "Medical Emergencies Abroad", Limit: d("20000000.00")},
						{Name: "Trip Cancellation", Limit: d("1500000.00")},
					},
				},
				{
					Name:        "Annual Multi-Trip",
					BasePremium: d("24000.00"),
					Coverages: []core.Coverage{
						{Name: "Medical Emergencies Abroad", Limit: d("40000000.00")},
						{Name: "Trip Cancellation", Limit: d("3000000.00")},
						{Name: "Lost Baggage", Limit: d("800000.00")},
					},
				},
			},
		},
		{
			Provider:    "Superpool Underwriting",
			Name:        "Device Protect",
			Category:    core.CategoryGadget,
			BasePremium: d("1200.00"),
			Tiers: []core.ProductTier{
				{
					Name:        "Standard",
					BasePremium: d("1200.00"),
					Coverages: []core.Coverage{
						{Name: "Accidental Damage", Limit: d("350000.00")},
						{Name: "Theft", Limit: d("350000.00")},
					},
				},
			},
		},
	}

	for _, p := range products {
		if err := p.Validate(); err != nil {
			fmt.Printf("invalid seed product %s: %v\n", p.Name, err)
			continue
		}
		saved, err := catalog.UpsertByProviderName(ctx, p)
		if err != nil {
			fmt.Printf("failed to seed %s: %v\n", p.Name, err)
		} else {
			fmt.Printf("seeded: %s (%s)\n", saved.Name, saved.ID)
		}
	}
}
