package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/financas-app/financas-backend/internal/model"
)

// PlanilhaRepo handles spreadsheets and their rows. Deletes run inside
// a transaction so a sheet never outlives its rows or vice versa.
type PlanilhaRepo struct{ DB *sql.DB }

func NewPlanilhaRepo(db *sql.DB) *PlanilhaRepo { return &PlanilhaRepo{DB: db} }

// Create inserts a spreadsheet. RendaMensal is the income snapshot
// taken from the owner at creation time.
func (r *PlanilhaRepo) Create(ctx context.Context, p *model.Planilha) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO planilhas (user_id, nome, descricao, renda_mensal) VALUES (?,?,?,?)",
		p.UserID, p.Nome, p.Descricao, p.RendaMensal)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM planilhas WHERE id=?", p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PlanilhaRepo) scanPlanilha(row *sql.Row) (*model.Planilha, error) {
	var (
		p         model.Planilha
		descricao sql.NullString
		renda     sql.NullString
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Nome, &descricao, &renda, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanilhaNotFound
	}
	if err != nil {
		return nil, err
	}
	if descricao.Valid {
		p.Descricao = &descricao.String
	}
	p.RendaMensal = parseNullValor(renda)
	return &p, nil
}

// GetByID fetches one spreadsheet with all of its rows.
func (r *PlanilhaRepo) GetByID(ctx context.Context, id uint64) (*model.Planilha, error) {
	p, err := r.scanPlanilha(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, nome, descricao, renda_mensal, created_at, updated_at FROM planilhas WHERE id=? LIMIT 1",
		id))
	if err != nil {
		return nil, err
	}
	linhas, err := r.linhasFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Linhas = linhas
	return p, nil
}

// ListByUser returns all spreadsheets of a user, each with its rows.
func (r *PlanilhaRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Planilha, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, nome, descricao, renda_mensal, created_at, updated_at FROM planilhas WHERE user_id=? ORDER BY id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	planilhas := []*model.Planilha{}
	for rows.Next() {
		var (
			p         model.Planilha
			descricao sql.NullString
			renda     sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Nome, &descricao, &renda, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if descricao.Valid {
			p.Descricao = &descricao.String
		}
		p.RendaMensal = parseNullValor(renda)
		planilhas = append(planilhas, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range planilhas {
		linhas, err := r.linhasFor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Linhas = linhas
	}
	return planilhas, nil
}

// Update changes nome and descricao of a spreadsheet.
func (r *PlanilhaRepo) Update(ctx context.Context, id uint64, nome string, descricao *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE planilhas SET nome=?, descricao=? WHERE id=?",
		nome, descricao, id)
	return err
}

// Delete removes a spreadsheet and its rows in one transaction.
func (r *PlanilhaRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM linhas_planilha WHERE planilha_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM planilhas WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanilhaNotFound
	}
	return tx.Commit()
}

// AddLinha appends a row to a spreadsheet.
func (r *PlanilhaRepo) AddLinha(ctx context.Context, l *model.LinhaPlanilha) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO linhas_planilha (planilha_id, nome, tipo, data, valor, color) VALUES (?,?,?,?,?,?)",
		l.PlanilhaID, l.Nome, l.Tipo, l.Data, l.Valor, l.Color)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)

	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM linhas_planilha WHERE id=?", l.ID).
		Scan(&l.CreatedAt, &l.UpdatedAt)
}

// GetLinha fetches a single spreadsheet row.
func (r *PlanilhaRepo) GetLinha(ctx context.Context, id uint64) (*model.LinhaPlanilha, error) {
	var l model.LinhaPlanilha
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, planilha_id, nome, tipo, data, valor, color, created_at, updated_at FROM linhas_planilha WHERE id=? LIMIT 1",
		id).Scan(&l.ID, &l.PlanilhaID, &l.Nome, &l.Tipo, &l.Data, &l.Valor, &l.Color, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinhaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLinha rewrites all mutable fields of a row.
func (r *PlanilhaRepo) UpdateLinha(ctx context.Context, id uint64, nome, tipo string, data time.Time, valor model.Valor, color string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE linhas_planilha SET nome=?, tipo=?, data=?, valor=?, color=? WHERE id=?",
		nome, tipo, data, valor, color, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// RowsAffected is rows changed on MySQL, so confirm existence on 0.
	if n == 0 {
		if _, err := r.GetLinha(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteLinha removes a single row.
func (r *PlanilhaRepo) DeleteLinha(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM linhas_planilha WHERE id=?", id)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrLinhaNotFound)
}

func (r *PlanilhaRepo) linhasFor(ctx context.Context, planilhaID uint64) ([]model.LinhaPlanilha, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, planilha_id, nome, tipo, data, valor, color, created_at, updated_at FROM linhas_planilha WHERE planilha_id=? ORDER BY id",
		planilhaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	linhas := []model.LinhaPlanilha{}
	for rows.Next() {
		var l model.LinhaPlanilha
		if err := rows.Scan(&l.ID, &l.PlanilhaID, &l.Nome, &l.Tipo, &l.Data, &l.Valor, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		linhas = append(linhas, l)
	}
	return linhas, rows.Err()
}
