package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRow は documents テーブルの1行です。
// 全コレクションを (collection, doc_id) の複合キーで1テーブルに保持します。
type DocumentRow struct {
	Collection string `gorm:"primaryKey;size:191"`
	DocID      string `gorm:"primaryKey;size:191"`
	Data       []byte `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time
}

// TableName はテーブル名を固定します。
func (DocumentRow) TableName() string {
	return "documents"
}

// GormStore はPostgreSQLのjsonbを使ったStore実装です。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore はdocumentsテーブルをマイグレーションしてストアを返します。
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&DocumentRow{}); err != nil {
		return nil, fmt.Errorf("documentsテーブルのマイグレーションに失敗しました: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	return gormGet(s.db.WithContext(ctx), collection, id, out)
}

func (s *GormStore) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	return gormList(s.db.WithContext(ctx), collection, opts)
}

// RunTransaction は読み取り→検証→一括書き込みの1サイクルを
// SERIALIZABLE分離のDBトランザクションで実行します。
// 同一ルームへの同時レディ提出はここで直列化されます。
func (s *GormStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		t := &gormTx{db: dbtx}
		if err := fn(t); err != nil {
			return err
		}
		return t.flush()
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func gormGet(db *gorm.DB, collection, id string, out interface{}) error {
	var row DocumentRow
	err := db.Where("collection = ? AND doc_id = ?", collection, id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(row.Data, out)
}

func gormList(db *gorm.DB, collection string, opts ListOptions) ([]Document, error) {
	q := db.Where("collection = ?", collection)
	if opts.OrderBy != "" {
		dir := "ASC"
		if opts.Descending {
			dir = "DESC"
		}
		// jsonb同士の比較は数値を数値として順序付けるので data->> ではなく data-> を使う
		q = q.Order(fmt.Sprintf("(data -> '%s') %s", opts.OrderBy, dir))
	} else {
		q = q.Order("doc_id ASC")
	}

	var rows []DocumentRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{ID: row.DocID, Data: json.RawMessage(row.Data)})
	}
	return docs, nil
}

// 書き込み操作の種類
const (
	opSet = iota
	opUpdate
	opDelete
)

type gormOp struct {
	kind       int
	collection string
	id         string
	data       []byte
}

// gormTx はトランザクション内の読み書きです。書き込みはflushまでバッファされます。
type gormTx struct {
	db  *gorm.DB
	ops []gormOp
}

func (t *gormTx) Get(ctx context.Context, collection, id string, out interface{}) error {
	return gormGet(t.db, collection, id, out)
}

func (t *gormTx) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	return gormList(t.db, collection, opts)
}

func (t *gormTx) Set(collection, id string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	t.ops = append(t.ops, gormOp{kind: opSet, collection: collection, id: id, data: data})
	return nil
}

func (t *gormTx) Update(collection, id string, fields map[string]interface{}) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	t.ops = append(t.ops, gormOp{kind: opUpdate, collection: collection, id: id, data: data})
	return nil
}

func (t *gormTx) Delete(collection, id string) {
	t.ops = append(t.ops, gormOp{kind: opDelete, collection: collection, id: id})
}

// flush はバッファした書き込みを順に適用します。
// トランザクション内なので途中で失敗すれば全体がロールバックされます。
func (t *gormTx) flush() error {
	for _, op := range t.ops {
		switch op.kind {
		case opSet:
			row := DocumentRow{
				Collection: op.collection,
				DocID:      op.id,
				Data:       op.data,
				UpdatedAt:  time.Now(),
			}
			err := t.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		case opUpdate:
			res := t.db.Model(&DocumentRow{}).
				Where("collection = ? AND doc_id = ?", op.collection, op.id).
				Updates(map[string]interface{}{
					"data":       gorm.Expr("data || ?::jsonb", string(op.data)),
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		case opDelete:
			err := t.db.Where("collection = ? AND doc_id = ?", op.collection, op.id).
				Delete(&DocumentRow{}).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}
