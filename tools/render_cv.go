package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cv-apply/internal/model"
	"cv-apply/internal/usecase"
)

func main() {
	in := "cv_sections.json"
	if len(os.Args) > 1 {
		in = os.Args[1]
	}

	var doc model.Document
	if b, err := os.ReadFile(in); err == nil {
		if err := json.Unmarshal(b, &doc); err != nil {
			fmt.Fprintf(os.Stderr, "unmarshal: %v\n", err)
			os.Exit(2)
		}
	} else {
		// no input file: render a small sample CV
		doc = model.Document{
			Title: "Curriculum Vitae",
			Sections: []model.Section{
				{Level: model.LevelHeading, Text: "Profile"},
				{Level: model.LevelBody, Text: "Backend engineer with a focus on integration work.", BreakAfter: true},
				{Level: model.LevelHeading, Text: "Experience"},
				{Level: model.LevelBody, Text: "Example Corp — Software Engineer (2021–2026)", Indent: 12},
			},
			Links: []string{"https://www.example.com/profile"},
		}
	}

	builder := usecase.NewDocumentBuilder(nil, "templates")
	html, err := builder.BuildHTML(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build html: %v\n", err)
		os.Exit(2)
	}

	outFile := filepath.Join("cv-data", "generated", "cv_preview.html")
	if err := os.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(2)
	}
	if err := os.WriteFile(outFile, []byte(html), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write out: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("wrote %s\n", outFile)
}
