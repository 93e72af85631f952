package qdrant

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
	qdrant "github.com/qdrant/go-client/qdrant"
)

const (
	payloadChunkID  = "chunk_id"
	payloadText     = "text"
	payloadSource   = "source"
	payloadFileName = "file_name"
	payloadPage     = "page"
)

func collectionPrefix(database string) string {
	if database == "" {
		return ""
	}
	return database + "__"
}

func (c *QdrantClient) physical(name string) string {
	return c.prefix + name
}

func (c *QdrantClient) logical(physical string) (string, bool) {
	if !strings.HasPrefix(physical, c.prefix) {
		return "", false
	}
	return strings.TrimPrefix(physical, c.prefix), true
}

func buildPayload(r vectordb.Record) (map[string]*qdrant.Value, error) {
	fields := map[string]any{
		payloadChunkID:  r.ID,
		payloadText:     r.Text,
		payloadSource:   r.Metadata.Source,
		payloadFileName: r.Metadata.FileName,
	}
	if r.Metadata.Page != nil {
		fields[payloadPage] = int64(*r.Metadata.Page)
	}
	return qdrant.TryValueMap(fields)
}

func recordFromPayload(payload map[string]*qdrant.Value) vectordb.Record {
	r := vectordb.Record{
		ID:   payload[payloadChunkID].GetStringValue(),
		Text: payload[payloadText].GetStringValue(),
		Metadata: vectordb.Metadata{
			Source:   payload[payloadSource].GetStringValue(),
			FileName: payload[payloadFileName].GetStringValue(),
		},
	}
	if v, ok := payload[payloadPage]; ok {
		if iv, ok := v.GetKind().(*qdrant.Value_IntegerValue); ok {
			r.Metadata.Page = vectordb.PageOf(int(iv.IntegerValue))
		}
	}
	return r
}

func extractVectorDetails(info *qdrant.CollectionInfo) (int, string) {
	if info == nil ||
		info.Config == nil ||
		info.Config.Params == nil ||
		info.Config.Params.VectorsConfig == nil ||
		info.Config.Params.VectorsConfig.Config == nil {
		return 0, ""
	}

	if cfg, ok := info.Config.Params.VectorsConfig.Config.(*qdrant.VectorsConfig_Params); ok {
		return int(cfg.Params.Size), cfg.Params.Distance.String()
	}

	return 0, ""
}

func checkDimension(name string, want, got int) error {
	if want != 0 && want != got {
		return vectordb.DimensionMismatch(name, want, got)
	}
	return nil
}

func wrapErr(op, name string, err error) error {
	return fmt.Errorf("[Qdrant] %s '%s' failed: %w", op, name, err)
}
