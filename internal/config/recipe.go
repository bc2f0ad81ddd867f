package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// CustomerDropColumns are the customer-export columns that are never
// imported. Names absent from a given file are ignored.
var CustomerDropColumns = []string{
	"location_import_id", "ref_number", "id", "scheduling_comments",
	"tech_comments", "regions", "service_lines",
	"primary_contact_mobile", "primary_contact_alternate_phone",
	"company_import_id", "billing_comments", "tags", "comments", "store_number",
}

type recipe struct {
	outputName string
	build      func(in, out string, drop []string) Pipeline
}

var recipes = map[string]recipe{
	"customer": {outputName: "Updated_Customer.csv", build: customerPipeline},
	"pricing":  {outputName: "Updated_Flat_Rate_HVAC_Pricing_split.csv", build: pricingPipeline},
}

// RecipeNames lists the built-in recipes.
func RecipeNames() []string {
	names := make([]string, 0, len(recipes))
	for n := range recipes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Recipe returns the built-in pipeline name for input file in. When out is
// empty the output is written next to the input under the recipe's default
// file name. A nil drop uses the recipe's default drop list.
//
//   - customer: normalize headers, drop CustomerDropColumns if present, split
//     street into location_street and unit.
//   - pricing: normalize headers, split description at the first space into
//     code and description.
func Recipe(name, in, out string, drop []string) (Pipeline, error) {
	r, ok := recipes[name]
	if !ok {
		return Pipeline{}, fmt.Errorf("unknown recipe %q (known: %v)", name, RecipeNames())
	}
	if in == "" {
		return Pipeline{}, fmt.Errorf("recipe %s: input path must not be empty", name)
	}
	if out == "" {
		if IsURL(in) {
			return Pipeline{}, fmt.Errorf("recipe %s: an output path is required when the input is a URL", name)
		}
		out = DefaultOutputPath(in, r.outputName)
	}
	return r.build(in, out, drop), nil
}

// DefaultOutputPath returns name inside the directory of in.
func DefaultOutputPath(in, name string) string {
	return filepath.Join(filepath.Dir(in), name)
}

// SourceFor returns an http source for http(s) URLs and a file source
// otherwise.
func SourceFor(in string) Source {
	if IsURL(in) {
		return Source{Kind: "http", HTTP: SourceHTTP{URL: in}}
	}
	return Source{Kind: "file", File: SourceFile{Path: in}}
}

// IsURL reports whether in starts with http:// or https://.
func IsURL(in string) bool {
	l := strings.ToLower(in)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func basePipeline(job, in, out string) Pipeline {
	return Pipeline{
		Job:    job,
		Source: SourceFor(in),
		Parser: Parser{Kind: "csv", Options: Options{}},
		Storage: Storage{
			Kind: "csv",
			File: StorageFile{Path: out},
		},
	}
}

func customerPipeline(in, out string, drop []string) Pipeline {
	if drop == nil {
		drop = CustomerDropColumns
	}
	p := basePipeline("customer", in, out)
	p.Transform = []Transform{
		{Kind: "normalize_headers", Options: Options{}},
		{Kind: "drop", Options: Options{"columns": drop}},
		{Kind: "split_pattern", Options: Options{
			"column": "street",
			"into":   []string{"location_street", "unit"},
			"no_match": map[string]any{
				"first":  "original",
				"second": "empty",
			},
		}},
	}
	return p
}

func pricingPipeline(in, out string, drop []string) Pipeline {
	p := basePipeline("pricing", in, out)
	p.Transform = []Transform{
		{Kind: "normalize_headers", Options: Options{}},
	}
	if len(drop) > 0 {
		p.Transform = append(p.Transform, Transform{Kind: "drop", Options: Options{"columns": drop}})
	}
	p.Transform = append(p.Transform, Transform{Kind: "split_delimiter", Options: Options{
		"column":    "description",
		"delimiter": " ",
		"into":      []string{"code", "description"},
	}})
	return p
}
