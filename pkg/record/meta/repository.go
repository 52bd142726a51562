package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"colcon-nix/pkg/descriptor"
	"colcon-nix/pkg/record"
	"colcon-nix/pkg/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 实现了 record.Store 接口
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Put 插入或覆盖 (UPSERT ON (kind, name))
func (r *Repository) Put(ctx context.Context, rec record.Record) error {
	model, err := toModel(rec)
	if err != nil {
		return err
	}

	err = r.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "name"}},
			UpdateAll: true,
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.Key(), err)
	}
	return nil
}

// PutAll 在一条 UPSERT 语句中写入全部记录
func (r *Repository) PutAll(ctx context.Context, recs []record.Record) error {
	if len(recs) == 0 {
		return nil
	}

	models := make([]RecordModel, 0, len(recs))
	for _, rec := range recs {
		model, err := toModel(rec)
		if err != nil {
			return err
		}
		models = append(models, model)
	}

	err := r.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "name"}},
			UpdateAll: true,
		}).
		Create(&models).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d records: %w", len(recs), err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, kind descriptor.Kind, name string) (record.Record, error) {
	var model RecordModel
	err := r.db.GetConn().WithContext(ctx).
		Where("kind = ? AND name = ?", string(kind), name).
		First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record.Record{}, record.ErrNotFound
	}
	if err != nil {
		return record.Record{}, err
	}
	return fromModel(model)
}

func (r *Repository) List(ctx context.Context) ([]record.Record, error) {
	var models []RecordModel
	err := r.db.GetConn().WithContext(ctx).
		Order("kind ASC, name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromModels(models)
}

// FindByNarHash 反查哪些描述符具有给定的哈希
func (r *Repository) FindByNarHash(ctx context.Context, h types.SRIHash) ([]record.Record, error) {
	var models []RecordModel
	err := r.db.GetConn().WithContext(ctx).
		Where("nar_hash = ?", h.String()).
		Order("kind ASC, name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromModels(models)
}

// Close 关闭数据库连接
func (r *Repository) Close() error {
	return r.db.Close()
}

func toModel(rec record.Record) (RecordModel, error) {
	var metaJSON datatypes.JSON
	if len(rec.Metadata) > 0 {
		data, err := json.Marshal(rec.Metadata)
		if err != nil {
			return RecordModel{}, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metaJSON = datatypes.JSON(data)
	}

	return RecordModel{
		Kind:      string(rec.Kind),
		Name:      rec.Name,
		Type:      rec.Type,
		Path:      rec.Path,
		NarHash:   rec.NarHash.String(),
		Metadata:  metaJSON,
		Timestamp: rec.UpdatedAt,
	}, nil
}

func fromModel(m RecordModel) (record.Record, error) {
	rec := record.Record{
		Kind:      descriptor.Kind(m.Kind),
		Name:      m.Name,
		Type:      m.Type,
		Path:      m.Path,
		NarHash:   types.SRIHash(m.NarHash),
		UpdatedAt: m.Timestamp,
	}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &rec.Metadata); err != nil {
			return record.Record{}, fmt.Errorf("corrupted metadata for %s: %w", rec.Key(), err)
		}
	}
	return rec, nil
}

func fromModels(models []RecordModel) ([]record.Record, error) {
	out := make([]record.Record, 0, len(models))
	for _, m := range models {
		rec, err := fromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
