package mockapi

import (
	"fmt"
	"time"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

var categoryNames = []string{"Hogar", "Tecnologia", "Belleza", "Mascotas", "Deportes", "Cocina"}

var productNouns = []string{
	"Lampara LED", "Organizador", "Humidificador", "Cepillo Secador", "Collar GPS",
	"Botella Termica", "Soporte Celular", "Masajeador", "Licuadora Portatil", "Banda Elastica",
	"Audifonos Bluetooth", "Rodillo Facial",
}

var productAdjectives = []string{"Pro", "Mini", "Plus", "Smart", "Max"}

var suppliers = []string{"Importadora Sol", "TecnoHub", "Distribuciones Andina", "Mega Store"}

type product struct {
	dahell.Opportunity
	CategoryID string
}

func seedProducts(n int) []product {
	out := make([]product, 0, n)
	for i := 0; i < n; i++ {
		competitors := (i * 7) % 11
		saturation := "BAJA"
		switch dahell.CompetitorLevel(competitors) {
		case dahell.LevelHigh:
			saturation = "ALTA"
		case dahell.LevelMedium:
			saturation = "MEDIA"
		}
		id := int64(1000 + i)
		out = append(out, product{
			Opportunity: dahell.Opportunity{
				ID:           id,
				Title:        fmt.Sprintf("%s %s", productNouns[i%len(productNouns)], productAdjectives[i%len(productAdjectives)]),
				Image:        fmt.Sprintf("https://img.example.invalid/%d.jpg", id),
				Price:        dahell.FlexFloat(float64(15000 + (i*3700)%90000)),
				ProfitMargin: dahell.FlexString(fmt.Sprintf("%d%%", 20+(i*13)%45)),
				Supplier:     suppliers[i%len(suppliers)],
				Competitors:  competitors,
				Saturation:   saturation,
			},
			CategoryID: fmt.Sprintf("%d", 1+i%len(categoryNames)),
		})
	}
	return out
}

func seedCategories() []dahell.Category {
	out := make([]dahell.Category, 0, len(categoryNames))
	for i, name := range categoryNames {
		out = append(out, dahell.Category{ID: dahell.FlexString(fmt.Sprintf("%d", i+1)), Name: name})
	}
	return out
}

func seedOrphans(products []product) []dahell.Orphan {
	var out []dahell.Orphan
	for i := 3; i < len(products) && len(out) < 8; i += 5 {
		p := products[i]
		out = append(out, dahell.Orphan{
			ProductID: p.ID,
			Title:     p.Title,
			Image:     p.Image,
			Price:     p.Price,
			ClusterID: int64(500 + i),
		})
	}
	return out
}

var decisions = []string{"MATCH", "REJECTED", "VISUAL_MATCH", "REJECTED", "HYBRID_MATCH", "JOINED_CLUSTER"}

var methods = []string{"visual", "text", "hybrid"}

func synthAudit(seq int, products []product, now time.Time) dahell.AuditLog {
	a := products[seq%len(products)]
	b := products[(seq*3+1)%len(products)]
	visual := float64((seq*37)%100) / 100
	text := float64((seq*53)%100) / 100
	return dahell.AuditLog{
		Timestamp:     float64(now.Unix()),
		ProductID:     a.ID,
		CandidateID:   b.ID,
		Decision:      decisions[seq%len(decisions)],
		Concept:       productNouns[seq%len(productNouns)],
		MatchMethod:   methods[seq%len(methods)],
		VisualScore:   visual,
		TextScore:     text,
		FinalScore:    (visual*6 + text*4) / 10,
		TitleA:        a.Title,
		TitleB:        b.Title,
		ImageA:        a.Image,
		ImageB:        b.Image,
		ActiveWeights: []byte(`{"visual":0.6,"text":0.4}`),
	}
}

func seedContainers(now time.Time) dahell.ContainerStats {
	stats := dahell.ContainerStats{}
	for i, svc := range dahell.Services {
		status := "running"
		if i == len(dahell.Services)-1 {
			status = "exited"
		}
		stats[svc.ID] = dahell.ContainerStat{
			Status:      status,
			CPUPercent:  float64((i*17)%60) + 0.5,
			MemoryUsage: uint64(64+i*48) << 20,
			MemoryLimit: 2 << 30,
			StartedAt:   now.Add(-time.Duration(i+1) * time.Hour).UTC().Format(time.RFC3339),
		}
	}
	return stats
}

func seedLogs() []dahell.ServiceLog {
	var out []dahell.ServiceLog
	for _, svc := range dahell.Services {
		for i := 0; i < 5; i++ {
			out = append(out, dahell.ServiceLog{
				Service: svc.ID,
				Message: fmt.Sprintf("%s worker heartbeat %d", svc.Name, i+1),
				Level:   "INFO",
			})
		}
	}
	return out
}
