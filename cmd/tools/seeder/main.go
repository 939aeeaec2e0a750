package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Seeds demo catalog data for local development. Prices are in centavos and
// weights in grams, matching the storefront schema.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	catIDs := seedCategories(db)
	seedProducts(db, catIDs)

	log.Println("Seeding completed successfully!")
}

func seedCategories(db *sql.DB) map[string]string {
	categories := []struct {
		Name string
		Slug string
	}{
		{"Cajas de cartón", "cajas-de-carton"},
		{"Bolsas y sacos", "bolsas-y-sacos"},
		{"Cintas adhesivas", "cintas-adhesivas"},
		{"Película y emplaye", "pelicula-y-emplaye"},
		{"Relleno y protección", "relleno-y-proteccion"},
		{"Flejes y grapas", "flejes-y-grapas"},
	}

	log.Println("Seeding categories...")
	ids := make(map[string]string)
	for _, c := range categories {
		_, err := db.Exec(`
			INSERT INTO categories (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name;
		`, c.Name, c.Slug)
		if err != nil {
			log.Printf("Failed to upsert category %s: %v", c.Name, err)
			continue
		}
		var id string
		if err := db.QueryRow("SELECT id FROM categories WHERE slug = $1", c.Slug).Scan(&id); err != nil {
			log.Printf("Failed to get ID for category %s: %v", c.Name, err)
			continue
		}
		ids[c.Slug] = id
	}
	return ids
}

func seedProducts(db *sql.DB, catIDs map[string]string) {
	products := []struct {
		Title       string
		Slug        string
		Category    string
		Price       *int64
		WeightGrams int64
		Unit        string
		Thumbnail   string
	}{
		{"Caja de cartón 30x30x30 sencilla", "caja-carton-30x30x30", "cajas-de-carton", price(1599), 350, "piezas", "https://images.example.mx/cajas/30x30x30.jpg"},
		{"Caja de cartón 60x40x40 doble", "caja-carton-60x40x40", "cajas-de-carton", price(3450), 900, "piezas", "https://images.example.mx/cajas/60x40x40.jpg"},
		{"Caja archivo tamaño oficio", "caja-archivo-oficio", "cajas-de-carton", price(2890), 700, "piezas", "https://images.example.mx/cajas/archivo.jpg"},
		{"Bolsa de polietileno 20x30 cm", "bolsa-polietileno-20x30", "bolsas-y-sacos", price(45), 4, "piezas", "https://images.example.mx/bolsas/20x30.jpg"},
		{"Saco de rafia 50 kg", "saco-rafia-50kg", "bolsas-y-sacos", price(1250), 120, "piezas", "https://images.example.mx/bolsas/rafia.jpg"},
		{"Cinta canela 48mm x 150m", "cinta-canela-48mm", "cintas-adhesivas", price(2790), 280, "piezas", "https://images.example.mx/cintas/canela.jpg"},
		{"Cinta transparente 48mm x 150m", "cinta-transparente-48mm", "cintas-adhesivas", price(2790), 280, "piezas", "https://images.example.mx/cintas/transparente.jpg"},
		{"Película stretch 18 pulgadas", "pelicula-stretch-18", "pelicula-y-emplaye", price(18500), 2300, "piezas", "https://images.example.mx/emplaye/stretch18.jpg"},
		{"Emplaye grado alimenticio por kilo", "emplaye-alimenticio-kg", "pelicula-y-emplaye", price(9800), 1000, "kg", "https://images.example.mx/emplaye/alimenticio.jpg"},
		{"Relleno de papel kraft por kilo", "relleno-kraft-kg", "relleno-y-proteccion", price(3200), 1000, "kg", "https://images.example.mx/relleno/kraft.jpg"},
		{"Burbuja de aire rollo 1.20m x 50m", "burbuja-rollo-120x50", "relleno-y-proteccion", price(42000), 4500, "piezas", "https://images.example.mx/relleno/burbuja.jpg"},
		{"Fleje de plástico por kilo", "fleje-plastico-kg", "flejes-y-grapas", nil, 1000, "kg", "https://images.example.mx/flejes/plastico.jpg"},
	}

	log.Println("Seeding products...")
	for _, p := range products {
		catID, ok := catIDs[p.Category]
		if !ok {
			log.Printf("Missing category ID for %s", p.Category)
			continue
		}
		var basePrice sql.NullInt64
		if p.Price != nil {
			basePrice = sql.NullInt64{Int64: *p.Price, Valid: true}
		}
		_, err := db.Exec(`
			INSERT INTO products (title, slug, base_price, unit_weight_grams, default_unit, in_stock, thumbnail, category_id)
			VALUES ($1, $2, $3, $4, $5, true, $6, $7)
			ON CONFLICT (slug) DO UPDATE SET
				base_price = EXCLUDED.base_price,
				unit_weight_grams = EXCLUDED.unit_weight_grams,
				default_unit = EXCLUDED.default_unit,
				thumbnail = EXCLUDED.thumbnail,
				category_id = EXCLUDED.category_id;
		`, p.Title, p.Slug, basePrice, p.WeightGrams, p.Unit, p.Thumbnail, catID)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Title, err)
		}
	}
}

func price(centavos int64) *int64 { return &centavos }
