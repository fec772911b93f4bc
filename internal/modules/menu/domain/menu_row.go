package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// MenuColumns 抽出結果の列名（順序固定）
var MenuColumns = []string{"dish", "description", "price"}

// MaxPrice カタログの price 列 DECIMAL(10,2) に収まる最大値
const MaxPrice = 99999999.99

// MenuRow メニューの1行
type MenuRow struct {
	Dish        string
	Description string
	Price       float64
}

// MenuTable 1回の抽出で得られた行（重複はそのまま保持する）
type MenuTable []MenuRow

// CatalogItem 永続化済みのメニュー項目
type CatalogItem struct {
	ID          int64
	Dish        string
	Description string
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate 行が有効かチェック
func (r MenuRow) Validate() error {
	if r.Dish == "" {
		return fmt.Errorf("dish is empty")
	}
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return fmt.Errorf("price of %q is not a finite number", r.Dish)
	}
	if r.Price < 0 {
		return fmt.Errorf("price of %q is negative", r.Dish)
	}
	if r.Price > MaxPrice {
		return fmt.Errorf("price of %q exceeds %.2f", r.Dish, MaxPrice)
	}
	return nil
}

// RoundPrice 価格を小数第2位に丸める
func RoundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

// Dishes 料理名を出現順に返す
func (t MenuTable) Dishes() []string {
	dishes := make([]string, len(t))
	for i, row := range t {
		dishes[i] = row.Dish
	}
	return dishes
}

// Validate 全行をチェック
func (t MenuTable) Validate() error {
	for i, row := range t {
		if err := row.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

// WriteCSV ヘッダー付きCSVとして書き出す
func (t MenuTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MenuColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range t {
		record := []string{row.Dish, row.Description, strconv.FormatFloat(row.Price, 'f', -1, 64)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
