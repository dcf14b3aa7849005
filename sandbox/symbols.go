package sandbox

import (
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"dida/chart"
	"dida/dataset"
)

// Standard library packages the interpreter may load. Everything else
// (filesystem, network, exec, unsafe) is simply never made available.
var stdlibPackages = []string{"fmt", "math", "sort", "strconv", "strings", "time"}

var allowedStdlib = func() map[string]bool {
	m := make(map[string]bool, len(stdlibPackages))
	for _, pkg := range stdlibPackages {
		m[pkg] = true
	}
	return m
}()

// restrictedStdlibSymbols filters yaegi's generated stdlib symbol table down
// to the whitelist. Symbol keys have the form "importPath/name".
func restrictedStdlibSymbols() interp.Exports {
	out := interp.Exports{}
	for key, symbols := range stdlib.Symbols {
		idx := strings.LastIndex(key, "/")
		if idx < 0 {
			continue
		}
		if allowedStdlib[key[:idx]] {
			out[key] = symbols
		}
	}
	return out
}

// didaSymbols exposes the dataset and chart packages to interpreted code so
// generated transformations can work with the same Table type the host uses.
func didaSymbols() interp.Exports {
	return interp.Exports{
		"dida/dataset/dataset": map[string]reflect.Value{
			"Table":      reflect.ValueOf((*dataset.Table)(nil)),
			"Series":     reflect.ValueOf((*dataset.Series)(nil)),
			"ValueCount": reflect.ValueOf((*dataset.ValueCount)(nil)),
			"DType":      reflect.ValueOf((*dataset.DType)(nil)),

			"NewTable":    reflect.ValueOf(dataset.NewTable),
			"NewSeries":   reflect.ValueOf(dataset.NewSeries),
			"FromColumns": reflect.ValueOf(dataset.FromColumns),
			"CellString":  reflect.ValueOf(dataset.CellString),

			"TypeNumeric":     reflect.ValueOf(dataset.TypeNumeric),
			"TypeCategorical": reflect.ValueOf(dataset.TypeCategorical),
			"TypeDatetime":    reflect.ValueOf(dataset.TypeDatetime),
			"TypeBoolean":     reflect.ValueOf(dataset.TypeBoolean),
			"TypeText":        reflect.ValueOf(dataset.TypeText),
			"TypeUnknown":     reflect.ValueOf(dataset.TypeUnknown),
		},
		"dida/chart/chart": map[string]reflect.Value{
			"Canvas":    reflect.ValueOf((*chart.Canvas)(nil)),
			"NewCanvas": reflect.ValueOf(chart.NewCanvas),
		},
	}
}
