// Package sources produces sample record batches for the demo
// drivers: job listings, e-commerce products, and news articles. The
// records are randomized but carry the same shape real extractions
// would.
package sources

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aluiziolira/go-scrape-toolkit/models"
)

var companies = []string{
	"TechCorp", "InnovaSoft", "DataSolutions", "CloudTech",
	"StartupXYZ", "MegaCorp", "DigitalLabs", "CodeFactory",
}

var seniorityLevels = []string{"Júnior", "Pleno", "Sênior"}

var salaries = []int{3000, 4500, 6000, 8000, 10000, 12000}

// Jobs produces between 5 and 15 job records per search term.
func Jobs(terms []string, location string) models.Batch {
	now := time.Now()
	var batch models.Batch
	for _, term := range terms {
		n := 5 + rand.IntN(11)
		for i := 0; i < n; i++ {
			batch = append(batch, models.NewRecord().
				Set("title", models.String(fmt.Sprintf("Desenvolvedor %s %s", term, pick(seniorityLevels)))).
				Set("company", models.String(pick(companies))).
				Set("location", models.String(location)).
				Set("salary", models.Int(salaries[rand.IntN(len(salaries))])).
				Set("description", models.String(fmt.Sprintf("Vaga para %s com experiência em desenvolvimento web", term))).
				Set("requirements", models.String(fmt.Sprintf("Python, %s, Git, SQL", term))).
				Set("url", models.String(fmt.Sprintf("https://example.com/job/%s/%d", term, i))).
				Set("posted_date", models.String(now.Format("2006-01-02"))).
				Set("scraped_at", models.Time(now)))
		}
	}
	return batch
}

var productNames = map[string][]string{
	"eletrônicos": {"Smartphone", "Tablet", "Notebook", "Fone", "Câmera"},
	"roupas":      {"Camiseta", "Calça", "Vestido", "Casaco", "Tênis"},
	"casa":        {"Mesa", "Cadeira", "Sofá", "Cama", "Geladeira"},
	"livros":      {"Romance", "Técnico", "Biografia", "Ficção", "História"},
}

var availabilities = []string{"Em estoque", "Últimas unidades", "Indisponível"}

var brands = []string{"Marca A", "Marca B", "Marca C", "Marca D"}

// Products produces between 8 and 20 product records per category.
// Unknown categories fall back to a generic product line.
func Products(categories []string) models.Batch {
	now := time.Now()
	var batch models.Batch
	for _, category := range categories {
		names, ok := productNames[category]
		if !ok {
			names = []string{"Produto Genérico"}
		}
		n := 8 + rand.IntN(13)
		for i := 0; i < n; i++ {
			batch = append(batch, models.NewRecord().
				Set("name", models.String(fmt.Sprintf("%s %d", pick(names), 1+rand.IntN(100)))).
				Set("category", models.String(category)).
				Set("price", models.Number(round2(50+rand.Float64()*1950))).
				Set("rating", models.Number(round1(3+rand.Float64()*2))).
				Set("reviews_count", models.Int(10+rand.IntN(491))).
				Set("availability", models.String(pick(availabilities))).
				Set("brand", models.String(pick(brands))).
				Set("url", models.String(fmt.Sprintf("https://example.com/product/%s/%d", category, i))).
				Set("scraped_at", models.Time(now)))
		}
	}
	return batch
}

var outlets = []string{"TechNews", "InfoDaily", "TechCrunch Brasil", "StartupBR", "DevNews"}

// News produces between 5 and 12 article records per topic, with
// publication dates spread over the last month.
func News(topics []string) models.Batch {
	now := time.Now()
	var batch models.Batch
	for _, topic := range topics {
		n := 5 + rand.IntN(8)
		for i := 0; i < n; i++ {
			published := now.AddDate(0, 0, -rand.IntN(31))
			batch = append(batch, models.NewRecord().
				Set("title", models.String(fmt.Sprintf("Últimas novidades sobre %s - %d", topic, 1+rand.IntN(100)))).
				Set("source", models.String(pick(outlets))).
				Set("author", models.String(fmt.Sprintf("Autor %d", 1+rand.IntN(10)))).
				Set("published_date", models.String(published.Format("2006-01-02"))).
				Set("topic", models.String(topic)).
				Set("summary", models.String(fmt.Sprintf("Resumo da notícia sobre %s...", topic))).
				Set("url", models.String(fmt.Sprintf("https://example.com/news/%s/%d", topic, i))).
				Set("scraped_at", models.Time(now)))
		}
	}
	return batch
}

func pick(options []string) string {
	return options[rand.IntN(len(options))]
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
