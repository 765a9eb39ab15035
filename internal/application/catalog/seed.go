package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/livraria/internal/domain/book"
	"github.com/xiebiao/livraria/internal/infrastructure/files"
)

// seedBooks is the demonstration catalog: classic Brazilian novels.
var seedBooks = []struct {
	title  string
	author string
	year   int
	price  book.Money
}{
	{"Dom Casmurro", "Machado de Assis", 1899, 2990},
	{"O Cortiço", "Aluísio Azevedo", 1890, 2550},
	{"Senhora", "José de Alencar", 1875, 2490},
	{"O Guarani", "José de Alencar", 1857, 2200},
	{"Memórias Póstumas de Brás Cubas", "Machado de Assis", 1881, 2750},
	{"Quincas Borba", "Machado de Assis", 1891, 2690},
	{"A Moreninha", "Joaquim Manuel de Macedo", 1844, 1990},
	{"Iracema", "José de Alencar", 1865, 2150},
	{"O Ateneu", "Raul Pompéia", 1888, 2390},
	{"Lucíola", "José de Alencar", 1862, 2090},
	{"Helena", "Machado de Assis", 1876, 2590},
	{"A Escrava Isaura", "Bernardo Guimarães", 1875, 1890},
	{"O Mulato", "Aluísio Azevedo", 1881, 2450},
	{"Casa Velha", "Machado de Assis", 1885, 2290},
	{"Til", "José de Alencar", 1872, 2190},
}

// Seed inserts the demonstration catalog, one backup before the batch.
// Seeding twice inserts duplicates, as adding the same book twice would.
func (c *Catalog) Seed(ctx context.Context) (report *ImportReport, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("seed", start, err) }()

	rows := make([]files.Row, len(seedBooks))
	for i, s := range seedBooks {
		rows[i] = files.Row{Line: i + 1, Title: s.title, Author: s.author, Year: s.year, Price: s.price}
	}

	report = &ImportReport{Rows: len(rows)}
	report.Backup = c.autoBackup(ctx, "seed")
	c.insertRows(ctx, rows, report)

	c.log.Info().Int("imported", report.Imported).Int("failed", report.Failed).Msg("demo catalog seeded")
	return report, nil
}
