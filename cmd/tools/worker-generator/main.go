// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"campaign-workers/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Dir          string
	InputFields  []StructField
	OutputFields []StructField
}

type StructField struct {
	Name string
	Type string
	JSON string
}

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., matching.campaign.score)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator -activity <id> [-output <dir>] [-registry <path>] [-force]")
		fmt.Println("\nExample:")
		fmt.Println("  go run ./cmd/tools/worker-generator -activity analytics.metrics.normalize")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}
	act, ok := reg.FindByID(*activity)
	if !ok {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	files, err := Generate(*act, *outputDir, *force)
	if err != nil {
		fmt.Printf("Error generating worker: %v\n", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Printf("Generated %s\n", f)
	}

	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement execute in handler.go\n")
	fmt.Printf("  2. Add test cases to handler_test.go\n")
	fmt.Printf("  3. Register the handler in cmd/worker-manager/main.go\n")
	fmt.Printf("  4. Add a workers.%s section to configs/config.yaml\n", act.TaskType)
}

// Generate writes a gofmt'ed worker scaffold for activity under
// outputDir/<category>/<taskType> and returns the written paths.
func Generate(activity registry.Activity, outputDir string, force bool) ([]string, error) {
	if activity.TaskType == "" || activity.Category == "" {
		return nil, fmt.Errorf("activity %s needs a taskType and category", activity.ID)
	}

	dir := filepath.Join(strings.ToLower(activity.Category), activity.TaskType)
	data := WorkerData{
		Name:         activity.DisplayName,
		PackageName:  packageName(activity.TaskType),
		TaskType:     activity.TaskType,
		Dir:          filepath.ToSlash(dir),
		InputFields:  structFields(activity.InputSchema),
		OutputFields: structFields(activity.OutputSchema),
	}

	workerDir := filepath.Join(outputDir, dir)
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	templates := []struct{ file, body string }{
		{"config.go", configTemplate},
		{"models.go", modelsTemplate},
		{"handler.go", handlerTemplate},
		{"handler_test.go", testTemplate},
	}

	var written []string
	for _, t := range templates {
		path := filepath.Join(workerDir, t.file)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s already exists", path)
		}

		src, err := render(t.file, t.body, data)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func render(name, body string, data WorkerData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return src, nil
}

// packageName turns a task type such as rank-campaigns into rankcampaigns.
func packageName(taskType string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(taskType) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// structFields lists the schema's top-level properties sorted by name.
func structFields(schema map[string]interface{}) []StructField {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]StructField, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		fields = append(fields, StructField{
			Name: exportedName(name),
			Type: goType(details),
			JSON: name,
		})
	}
	return fields
}

// goType maps a property schema to a Go type. Nullable unions use their
// non-null member.
func goType(details map[string]interface{}) string {
	var jsonType string
	switch t := details["type"].(type) {
	case string:
		jsonType = t
	case []interface{}:
		var members []string
		for _, m := range t {
			if s, ok := m.(string); ok && s != "null" {
				members = append(members, s)
			}
		}
		if len(members) == 1 {
			jsonType = members[0]
		}
	}

	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		if items, ok := details["items"].(map[string]interface{}); ok {
			if item := goType(items); item != "interface{}" {
				return "[]" + item
			}
		}
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// exportedName upper-cases the first letter and a trailing "Id".
func exportedName(prop string) string {
	if prop == "" {
		return prop
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	if name == "Id" {
		return "ID"
	}
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}
