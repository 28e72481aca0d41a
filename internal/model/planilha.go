package model

import "time"

// Planilha is a user-owned spreadsheet grouping dated financial
// entries. RendaMensal is a snapshot of the owner's declared monthly
// income taken when the sheet is created.
type Planilha struct {
	ID          uint64          `json:"id"`
	UserID      uint64          `json:"userId"`
	Nome        string          `json:"nome"`
	Descricao   *string         `json:"descricao"`
	RendaMensal *Valor          `json:"renda_mensal"`
	Linhas      []LinhaPlanilha `json:"linhas"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// LinhaPlanilha is one row of a spreadsheet carrying a signed monetary
// value. Tipo distinguishes entry kinds (e.g. receita/despesa); Color
// is the hex display color chosen by the client.
type LinhaPlanilha struct {
	ID         uint64    `json:"id"`
	PlanilhaID uint64    `json:"planilhaId"`
	Nome       string    `json:"nome"`
	Tipo       string    `json:"tipo"`
	Data       time.Time `json:"data"`
	Valor      Valor     `json:"valor"`
	Color      string    `json:"color"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SomaLinhas adds up the values of a set of rows in centavos. Integer
// addition keeps the total independent of row order.
func SomaLinhas(linhas []LinhaPlanilha) Valor {
	var total Valor
	for _, l := range linhas {
		total += l.Valor
	}
	return total
}
