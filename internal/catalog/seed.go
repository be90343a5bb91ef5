package catalog

import "github.com/shopspring/decimal"

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SeedConfig returns the demo catalog shipped with the terminal.
func SeedConfig() Config {
	return Config{
		Products: []Product{
			{Code: "3838900015455", Name: "Mleko 1L", UnitPrice: price("1.29"), StockQty: 120, MinStockQty: 24, Category: "Mlečni izdelki"},
			{Code: "3838900015899", Name: "Kruh beli 500g", UnitPrice: price("1.49"), StockQty: 40, MinStockQty: 10, Category: "Pekarna"},
			{Code: "3838900023412", Name: "Maslo 250g", UnitPrice: price("2.89"), StockQty: 35, MinStockQty: 12, Category: "Mlečni izdelki"},
			{Code: "3838900031257", Name: "Jogurt naravni 180g", UnitPrice: price("0.89"), StockQty: 80, MinStockQty: 20, Category: "Mlečni izdelki"},
			{Code: "3838900047760", Name: "Piščančje prsi 500g", UnitPrice: price("5.49"), StockQty: 18, MinStockQty: 8, Category: "Meso"},
			{Code: "3838900052234", Name: "Testenine 500g", UnitPrice: price("1.19"), StockQty: 60, MinStockQty: 15, Category: "Suha hrana"},
			{Code: "3838900058663", Name: "Paradižnikova omaka 400g", UnitPrice: price("1.79"), StockQty: 45, MinStockQty: 10, Category: "Suha hrana"},
			{Code: "3838900061125", Name: "Voda 1.5L", UnitPrice: price("0.49"), StockQty: 200, MinStockQty: 48, Category: "Pijače"},
			{Code: "3838900067547", Name: "Čokolada mlečna 100g", UnitPrice: price("1.99"), StockQty: 6, MinStockQty: 12, Category: "Sladkarije"},
			{Code: "3838900072091", Name: "Kava mleta 250g", UnitPrice: price("3.79"), StockQty: 25, MinStockQty: 6, Category: "Pijače"},
		},
		BakeryPLUs: []Product{
			{Code: "1001", Name: "Kruh beli", UnitPrice: price("1.89"), Category: "Pekarna"},
			{Code: "1002", Name: "Kruh črni", UnitPrice: price("2.19"), Category: "Pekarna"},
			{Code: "1003", Name: "Kruh s semeni", UnitPrice: price("2.49"), Category: "Pekarna"},
			{Code: "1004", Name: "Kruh koruzni", UnitPrice: price("2.29"), Category: "Pekarna"},
			{Code: "1005", Name: "Domače bele žemlje", UnitPrice: price("0.39"), Category: "Pekarna"},
			{Code: "1006", Name: "Domače črne žemlje", UnitPrice: price("0.45"), Category: "Pekarna"},
			{Code: "1007", Name: "Domače semeni žemlje", UnitPrice: price("0.49"), Category: "Pekarna"},
			{Code: "1008", Name: "Domače kajzarice", UnitPrice: price("0.35"), Category: "Pekarna"},
			{Code: "1009", Name: "Domače lepinje", UnitPrice: price("0.59"), Category: "Pekarna"},
			{Code: "1010", Name: "Domače male lepinje", UnitPrice: price("0.45"), Category: "Pekarna"},
		},
		ScalePLUs: []Product{
			{Code: "9001", Name: "Jabolka", UnitPrice: price("1.99"), Category: "Sadje"},
			{Code: "9002", Name: "Banane", UnitPrice: price("1.29"), Category: "Sadje"},
			{Code: "9003", Name: "Krompir", UnitPrice: price("0.89"), Category: "Zelenjava"},
			{Code: "9004", Name: "Paradižnik", UnitPrice: price("2.49"), Category: "Zelenjava"},
			{Code: "9005", Name: "Grozdje belo", UnitPrice: price("2.99"), Category: "Sadje"},
		},
	}
}
