package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"menu-to-app/internal/modules/menu/domain"
)

const codeFence = "```"

// ParseMenuTable LLMの応答テキストを dish,description,price の表に変換する。
// 1行目が dish,description,price の見出し（大文字小文字は無視）なら捨てる。それ以外の不正行はすべてエラー。
func ParseMenuTable(text string) (domain.MenuTable, error) {
	body := stripCodeFences(text)
	if strings.TrimSpace(body) == "" {
		return nil, parseError("model response is empty", nil)
	}

	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	var table domain.MenuTable
	for index := 0; ; index++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError("model response is not valid csv", err)
		}

		line, _ := r.FieldPos(0)
		if len(record) != len(domain.MenuColumns) {
			return nil, parseError(fmt.Sprintf("line %d: expected %d columns, got %d", line, len(domain.MenuColumns), len(record)), nil)
		}

		if index == 0 && isHeader(record) {
			continue
		}

		row := domain.MenuRow{
			Dish:        strings.TrimSpace(record[0]),
			Description: strings.TrimSpace(record[1]),
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, parseError(fmt.Sprintf("line %d: price %q is not numeric", line, record[2]), err)
		}
		row.Price = domain.RoundPrice(price)

		if err := row.Validate(); err != nil {
			return nil, parseError(fmt.Sprintf("line %d", line), err)
		}
		table = append(table, row)
	}

	if len(table) == 0 {
		return nil, parseError("model response contains no menu rows", nil)
	}
	return table, nil
}

func isHeader(record []string) bool {
	for i, col := range domain.MenuColumns {
		if !strings.EqualFold(strings.TrimSpace(record[i]), col) {
			return false
		}
	}
	return true
}

// stripCodeFences ```csv ... ``` のような囲みを取り除く
func stripCodeFences(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), codeFence) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func parseError(msg string, cause error) error {
	return domain.NewError(domain.KindExtractionParse, msg, cause)
}
