package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	_ "github.com/go-sql-driver/mysql"

	"menu-to-app/internal/config"
	"menu-to-app/internal/modules/menu/domain"
)

// MenuItem BUNモデル
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Dish        string    `bun:"dish,notnull,unique,type:varchar(255)"`
	Description string    `bun:"description,notnull,type:text"`
	Price       float64   `bun:"price,notnull,type:decimal(10,2)"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// 料理名は大文字小文字を区別して一意にする
const dishCollationSQL = "ALTER TABLE menu_items MODIFY dish VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"

// BunCatalogRepository BUN実装
type BunCatalogRepository struct {
	db *bun.DB
}

// NewBunCatalogRepository 新しいBunCatalogRepositoryを作成
func NewBunCatalogRepository(cfg *config.MySQLConfig) (*BunCatalogRepository, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	sqldb, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := bun.NewDB(sqldb, mysqldialect.New())

	// 接続確認
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &BunCatalogRepository{db: db}, nil
}

// NewBunCatalogRepositoryWithDB DBインスタンスから作成（テスト用）
func NewBunCatalogRepositoryWithDB(db *bun.DB) *BunCatalogRepository {
	return &BunCatalogRepository{db: db}
}

// EnsureSchema menu_items テーブルがなければ作成する
func (r *BunCatalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().Model((*MenuItem)(nil)).IfNotExists().Exec(ctx); err != nil {
		return persistenceError("failed to create menu_items table", err)
	}
	if _, err := r.db.ExecContext(ctx, dishCollationSQL); err != nil {
		return persistenceError("failed to set dish collation", err)
	}
	return nil
}

// Upsert 全行を1トランザクションで挿入または更新する。
// 1行でも失敗すればバッチ全体をロールバックする。同じ料理名が複数あれば後の行が残る
func (r *BunCatalogRepository) Upsert(ctx context.Context, table domain.MenuTable) (int, error) {
	if len(table) == 0 {
		return 0, nil
	}
	if err := table.Validate(); err != nil {
		return 0, domain.NewError(domain.KindValidation, "invalid menu table", err)
	}

	now := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, row := range table {
			model := r.toModel(row, now)
			_, err := tx.NewInsert().
				Model(model).
				On("DUPLICATE KEY UPDATE").
				Set("description = VALUES(description)").
				Set("price = VALUES(price)").
				Set("updated_at = VALUES(updated_at)").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to upsert %q: %w", row.Dish, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, persistenceError("failed to update catalog", err)
	}
	return len(table), nil
}

// FindAll 料理名順に取得
func (r *BunCatalogRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.CatalogItem, error) {
	var models []MenuItem
	query := r.db.NewSelect().
		Model(&models).
		Order("dish ASC")

	// MySQLはLIMITなしのOFFSETを受け付けない
	if limit > 0 {
		query = query.Limit(limit)
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	if err := query.Scan(ctx); err != nil {
		return nil, persistenceError("failed to find menu items", err)
	}

	items := make([]*domain.CatalogItem, len(models))
	for i := range models {
		items[i] = r.toEntity(&models[i])
	}
	return items, nil
}

// FindByDish 料理名で検索
func (r *BunCatalogRepository) FindByDish(ctx context.Context, dish string) (*domain.CatalogItem, error) {
	model := &MenuItem{}
	err := r.db.NewSelect().
		Model(model).
		Where("dish = ?", dish).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.KindNotFound, fmt.Sprintf("dish not found: %s", dish), nil)
	}
	if err != nil {
		return nil, persistenceError("failed to find menu item", err)
	}

	return r.toEntity(model), nil
}

// Delete 料理名で削除
func (r *BunCatalogRepository) Delete(ctx context.Context, dish string) error {
	res, err := r.db.NewDelete().
		Model((*MenuItem)(nil)).
		Where("dish = ?", dish).
		Exec(ctx)
	if err != nil {
		return persistenceError("failed to delete menu item", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewError(domain.KindNotFound, fmt.Sprintf("dish not found: %s", dish), nil)
	}
	return nil
}

// Ping ヘルスチェック用の疎通確認
func (r *BunCatalogRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close データベース接続を閉じる
func (r *BunCatalogRepository) Close() error {
	return r.db.Close()
}

// toModel 行をモデルに変換
func (r *BunCatalogRepository) toModel(row domain.MenuRow, now time.Time) *MenuItem {
	return &MenuItem{
		Dish:        row.Dish,
		Description: row.Description,
		Price:       row.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// toEntity モデルをエンティティに変換
func (r *BunCatalogRepository) toEntity(model *MenuItem) *domain.CatalogItem {
	return &domain.CatalogItem{
		ID:          model.ID,
		Dish:        model.Dish,
		Description: model.Description,
		Price:       model.Price,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func persistenceError(msg string, err error) error {
	return domain.NewError(domain.KindPersistence, msg, err)
}
