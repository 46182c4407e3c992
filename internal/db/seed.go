package db

import (
	"database/sql"
)

type seedItem struct {
	Name        string
	Ingredients string
	UnitSize    string
	ABVPercent  float64
	PriceCents  int64
	Category    string
	InStock     bool
	IsLive      bool
}

// SeedCatalog populates the demo drinks menu. It never touches users, orders
// or tickets.
func SeedCatalog(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	items := []seedItem{
		{Name: "House Lager", Ingredients: "water, barley malt, hops, yeast", UnitSize: "330ml", ABVPercent: 4.8, PriceCents: 450, Category: "Beer", InStock: true, IsLive: true},
		{Name: "Amber Ale", Ingredients: "water, malted barley, hops, yeast", UnitSize: "330ml", ABVPercent: 5.4, PriceCents: 520, Category: "Beer", InStock: true, IsLive: true},
		{Name: "Dry Cider", Ingredients: "fermented apple juice", UnitSize: "500ml", ABVPercent: 5.0, PriceCents: 560, Category: "Cider", InStock: true, IsLive: true},
		{Name: "Cabernet Sauvignon", Ingredients: "grapes, sulphites", UnitSize: "750ml", ABVPercent: 13.5, PriceCents: 1890, Category: "Wine", InStock: true, IsLive: true},
		{Name: "Sauvignon Blanc", Ingredients: "grapes, sulphites", UnitSize: "750ml", ABVPercent: 12.5, PriceCents: 1690, Category: "Wine", InStock: true, IsLive: true},
		{Name: "Prosecco", Ingredients: "glera grapes, sulphites", UnitSize: "750ml", ABVPercent: 11.0, PriceCents: 1550, Category: "Wine", InStock: true, IsLive: true},
		{Name: "London Dry Gin", Ingredients: "juniper, coriander, citrus peel", UnitSize: "700ml", ABVPercent: 40.0, PriceCents: 2790, Category: "Spirits", InStock: true, IsLive: true},
		{Name: "Single Malt Whisky", Ingredients: "malted barley, water", UnitSize: "700ml", ABVPercent: 43.0, PriceCents: 4590, Category: "Spirits", InStock: false, IsLive: true},
		{Name: "Cold Brew Coffee", Ingredients: "arabica beans, water", UnitSize: "250ml", ABVPercent: 0, PriceCents: 380, Category: "Soft Drinks", InStock: true, IsLive: true},
		{Name: "Ginger Beer", Ingredients: "ginger, sugar, carbonated water", UnitSize: "330ml", ABVPercent: 0, PriceCents: 290, Category: "Soft Drinks", InStock: true, IsLive: true},
		{Name: "Elderflower Tonic", Ingredients: "elderflower, quinine, carbonated water", UnitSize: "200ml", ABVPercent: 0, PriceCents: 240, Category: "Soft Drinks", InStock: true, IsLive: true},
		{Name: "Barrel-Aged Negroni", Ingredients: "gin, vermouth, bitters", UnitSize: "100ml", ABVPercent: 28.0, PriceCents: 990, Category: "Pre-Mixed", InStock: true, IsLive: false},
	}

	for _, it := range items {
		var abv any
		if it.ABVPercent > 0 {
			abv = it.ABVPercent
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO menu_items(name,ingredients,unit_size,abv_percent,price_cents,category,in_stock,is_live,assign_all,created_at,updated_at)
			VALUES(?,?,?,?,?,?,?,?,1,?,?)`,
			it.Name, it.Ingredients, it.UnitSize, abv, it.PriceCents, it.Category, b2i(it.InStock), b2i(it.IsLive), unixNow(), unixNow()); err != nil {
			return err
		}
	}

	return tx.Commit()
}
