package benchmark

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/hyperjump/henkan/internal/dbwriter"
	"github.com/hyperjump/henkan/internal/models"
	"github.com/hyperjump/henkan/pkg/utils"
)

func BenchmarkInferColumnType(b *testing.B) {
	values := make([]string, 1000)
	for i := range values {
		values[i] = strconv.Itoa(i)
	}
	values[500] = "3.14"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = dbwriter.InferColumnType(values)
	}
}

func BenchmarkSanitizeColumnName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = utils.SanitizeColumnName("Order ID (2024) Total-Amount")
	}
}

func BenchmarkWriteDatabase(b *testing.B) {
	rows := make([][]string, 500)
	for i := range rows {
		rows[i] = []string{strconv.Itoa(i), "customer " + strconv.Itoa(i), "9.99"}
	}
	table := models.Table{
		Name:    "orders",
		Headers: []string{"id", "name", "total"},
		Rows:    rows,
	}
	writer := dbwriter.NewWriter()
	dir := b.TempDir()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		path := filepath.Join(dir, "bench"+strconv.Itoa(i)+".db")
		if _, err := writer.Write(ctx, path, []models.Table{table}); err != nil {
			b.Fatal(err)
		}
	}
}
