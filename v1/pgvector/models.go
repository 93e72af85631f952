package pgvector

import (
	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	pgv "github.com/pgvector/pgvector-go"
)

type collectionRow struct {
	Name      string `gorm:"column:name;primaryKey"`
	Dimension int    `gorm:"column:dimension"`
}

type chunkRow struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Collection string     `gorm:"column:collection"`
	ChunkID    string     `gorm:"column:chunk_id"`
	Text       string     `gorm:"column:text"`
	Source     string     `gorm:"column:source"`
	FileName   string     `gorm:"column:file_name"`
	Page       *int       `gorm:"column:page"`
	Embedding  pgv.Vector `gorm:"column:embedding"`
}

type hitRow struct {
	ChunkID  string
	Text     string
	Source   string
	FileName string
	Page     *int
	Distance float64
}

func toRow(collection string, r vectordb.Record) chunkRow {
	return chunkRow{
		Collection: collection,
		ChunkID:    r.ID,
		Text:       r.Text,
		Source:     r.Metadata.Source,
		FileName:   r.Metadata.FileName,
		Page:       r.Metadata.Page,
		Embedding:  pgv.NewVector(r.Vector),
	}
}

func (r chunkRow) record() vectordb.Record {
	return vectordb.Record{
		ID:     r.ChunkID,
		Text:   r.Text,
		Vector: r.Embedding.Slice(),
		Metadata: vectordb.Metadata{
			Page:     r.Page,
			Source:   r.Source,
			FileName: r.FileName,
		},
	}
}

func (r hitRow) hit() vectordb.Hit {
	return vectordb.Hit{
		ID:   r.ChunkID,
		Text: r.Text,
		Metadata: vectordb.Metadata{
			Page:     r.Page,
			Source:   r.Source,
			FileName: r.FileName,
		},
		Distance: float32(r.Distance),
	}
}
