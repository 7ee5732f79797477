package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/farmops-platform/block-service/internal/domain"
	mongoRepo "github.com/farmops-platform/block-service/internal/infrastructure/mongodb"
	"github.com/farmops-platform/block-service/pkg/mongodb"
)

// Seeder tool to load a task template catalog from a YAML file into the
// task_templates collection

var (
	mongoURI  = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName    = flag.String("db", "farmops", "Database name")
	file      = flag.String("file", "templates.yaml", "Path to the template catalog YAML file")
	dryRun    = flag.Bool("dry-run", true, "Dry run mode (validate only, no writes)")
	activate  = flag.Bool("activate", false, "Activate seeded templates that do not require approval")
	overwrite = flag.Bool("overwrite", false, "Overwrite templates that already exist")
)

// templateSeed mirrors the TaskTemplate aggregate with yaml tags
type templateSeed struct {
	TemplateID               string              `yaml:"templateId"`
	Name                     string              `yaml:"name"`
	Category                 string              `yaml:"category"`
	Priority                 string              `yaml:"priority"`
	EstimatedDurationMinutes int                 `yaml:"estimatedDurationMinutes"`
	Triggers                 triggerSeed         `yaml:"triggers"`
	Dependencies             dependencySeed      `yaml:"dependencies"`
	Materials                map[string]material `yaml:"materials"`
	Equipment                []string            `yaml:"equipment"`
	Cost                     costSeed            `yaml:"cost"`
	RequiresApproval         bool                `yaml:"requiresApproval"`
}

type triggerSeed struct {
	GrowthStage       *string         `yaml:"growthStage"`
	DaysAfterPlanting *int            `yaml:"daysAfterPlanting"`
	DaysBeforeHarvest *int            `yaml:"daysBeforeHarvest"`
	FrequencyDays     *int            `yaml:"frequencyDays"`
	SensorThresholds  []thresholdSeed `yaml:"sensorThresholds"`
	WeatherConditions []string        `yaml:"weatherConditions"`
	ManualOnly        bool            `yaml:"manualOnly"`
}

type thresholdSeed struct {
	SensorType string  `yaml:"sensorType"`
	Comparator string  `yaml:"comparator"`
	Value      float64 `yaml:"value"`
}

type dependencySeed struct {
	PrerequisiteTasks []string       `yaml:"prerequisiteTasks"`
	WaitRules         []waitRuleSeed `yaml:"waitRules"`
	ConflictingTasks  []string       `yaml:"conflictingTasks"`
	AllowedMonths     []int          `yaml:"allowedMonths"`
	RestrictedMonths  []int          `yaml:"restrictedMonths"`
}

type waitRuleSeed struct {
	AfterTaskID string `yaml:"afterTaskId"`
	WaitHours   int    `yaml:"waitHours"`
	Reason      string `yaml:"reason"`
}

type material struct {
	QuantityFormula string `yaml:"quantityFormula"`
	Unit            string `yaml:"unit"`
}

type costSeed struct {
	LaborFormula       string  `yaml:"laborFormula"`
	MaterialFormula    string  `yaml:"materialFormula"`
	EquipmentFormula   string  `yaml:"equipmentFormula"`
	OverheadPercentage float64 `yaml:"overheadPercentage"`
}

type catalog struct {
	Templates []templateSeed `yaml:"templates"`
}

func main() {
	flag.Parse()

	log.Printf("Starting template catalog seed...")
	log.Printf("MongoDB URI: %s", *mongoURI)
	log.Printf("Database: %s", *dbName)
	log.Printf("Catalog File: %s", *file)
	log.Printf("Dry Run: %v", *dryRun)

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read catalog file: %v", err)
	}

	var cat catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		log.Fatalf("Failed to parse catalog file: %v", err)
	}
	log.Printf("Found %d templates in catalog", len(cat.Templates))

	templates := make([]*domain.TaskTemplate, 0, len(cat.Templates))
	for _, seed := range cat.Templates {
		template, err := buildTemplate(seed)
		if err != nil {
			log.Fatalf("Invalid template %s: %v", seed.TemplateID, err)
		}
		templates = append(templates, template)
	}
	log.Printf("All %d templates validated", len(templates))

	if *dryRun {
		log.Println("DRY RUN MODE - no writes were made")
		log.Println("Run with -dry-run=false to seed the catalog")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, &mongodb.Config{
		URI:            *mongoURI,
		Database:       *dbName,
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close(context.Background())
	log.Println("Connected to MongoDB successfully")

	repo := mongoRepo.NewTemplateRepository(client.Database())

	var seeded, skipped int
	for _, template := range templates {
		existing, err := repo.FindByID(ctx, template.TemplateID)
		if err != nil {
			log.Fatalf("Failed to check template %s: %v", template.TemplateID, err)
		}
		if existing != nil && !*overwrite {
			log.Printf("Skipping existing template %s (use -overwrite to replace)", template.TemplateID)
			skipped++
			continue
		}

		if err := repo.Save(ctx, template); err != nil {
			log.Fatalf("Failed to save template %s: %v", template.TemplateID, err)
		}
		log.Printf("Seeded template %s (%s, status %s)", template.TemplateID, template.Category, template.Status)
		seeded++
	}

	log.Printf("Seed completed: %d seeded, %d skipped", seeded, skipped)
}

func buildTemplate(seed templateSeed) (*domain.TaskTemplate, error) {
	template, err := domain.NewTaskTemplate(
		seed.TemplateID,
		seed.Name,
		domain.TaskCategory(seed.Category),
		domain.TaskPriority(seed.Priority),
		seed.EstimatedDurationMinutes,
	)
	if err != nil {
		return nil, err
	}

	template.Triggers = domain.TriggerSpec{
		DaysAfterPlanting: seed.Triggers.DaysAfterPlanting,
		DaysBeforeHarvest: seed.Triggers.DaysBeforeHarvest,
		FrequencyDays:     seed.Triggers.FrequencyDays,
		WeatherConditions: seed.Triggers.WeatherConditions,
		ManualOnly:        seed.Triggers.ManualOnly,
	}
	if seed.Triggers.GrowthStage != nil {
		stage := domain.GrowthStage(*seed.Triggers.GrowthStage)
		template.Triggers.GrowthStage = &stage
	}
	for _, t := range seed.Triggers.SensorThresholds {
		template.Triggers.SensorThresholds = append(template.Triggers.SensorThresholds, domain.SensorThreshold{
			SensorType: t.SensorType,
			Comparator: domain.Comparator(t.Comparator),
			Value:      t.Value,
		})
	}

	template.Dependencies = domain.DependencySpec{
		PrerequisiteTasks: seed.Dependencies.PrerequisiteTasks,
		ConflictingTasks:  seed.Dependencies.ConflictingTasks,
	}
	for _, w := range seed.Dependencies.WaitRules {
		template.Dependencies.WaitRules = append(template.Dependencies.WaitRules, domain.WaitRule{
			AfterTaskID: w.AfterTaskID,
			WaitHours:   w.WaitHours,
			Reason:      w.Reason,
		})
	}
	if len(seed.Dependencies.AllowedMonths) > 0 || len(seed.Dependencies.RestrictedMonths) > 0 {
		template.Dependencies.Seasonal = &domain.SeasonalRestriction{
			AllowedMonths:    seed.Dependencies.AllowedMonths,
			RestrictedMonths: seed.Dependencies.RestrictedMonths,
		}
	}

	for name, m := range seed.Materials {
		template.Resources.Materials[name] = domain.MaterialRequirement{
			QuantityFormula: m.QuantityFormula,
			Unit:            m.Unit,
		}
	}
	for _, e := range seed.Equipment {
		template.Resources.Equipment[e] = true
	}

	template.Cost = domain.CostFormulas{
		LaborFormula:       seed.Cost.LaborFormula,
		MaterialFormula:    seed.Cost.MaterialFormula,
		EquipmentFormula:   seed.Cost.EquipmentFormula,
		OverheadPercentage: seed.Cost.OverheadPercentage,
	}
	template.RequiresApproval = seed.RequiresApproval

	if err := checkFormulas(template); err != nil {
		return nil, err
	}

	if *activate && !template.RequiresApproval {
		if err := template.Activate(); err != nil {
			return nil, err
		}
		template.ClearDomainEvents()
	}

	return template, nil
}

func checkFormulas(template *domain.TaskTemplate) error {
	formulas := map[string]string{
		"laborFormula":     template.Cost.LaborFormula,
		"materialFormula":  template.Cost.MaterialFormula,
		"equipmentFormula": template.Cost.EquipmentFormula,
	}
	for name, m := range template.Resources.Materials {
		formulas["materials."+name] = m.QuantityFormula
	}

	for field, formula := range formulas {
		if formula == "" {
			continue
		}
		if err := domain.CheckFormulaSyntax(formula); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}
