// Package orderlens is a filter-and-aggregate reporting engine for
// marketplace order extracts.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/orderlens/helpers"
//	    "github.com/spektr-org/orderlens/report"
//	)
//
//	st, err := helpers.LoadFiles("all_orders.csv")
//	f := report.NewFilter(start, end, "health_beauty")
//	dash, err := report.Run(ctx, st, f, report.WithLimits(limits))
//	err = report.Encode(os.Stdout, dash, report.FormatYAML)
//
// The store loads CSV extracts once; every filter change recomputes the
// dashboard tables (top categories, review scores, best sellers, payment
// methods, regions) from an in-memory view. Output is render-ready data:
// tables, chart configs and map markers. Nothing is rendered or persisted.
package orderlens
