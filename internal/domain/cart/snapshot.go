package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
)

var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

func EncodeSnapshot(snap model.CartSnapshot) ([]byte, error) {
	if snap.Items == nil {
		snap.Items = []model.LineItem{}
	}
	return json.Marshal(snap)
}

// DecodeSnapshot は保存形式を読み戻す。
// 旧フロントが保存していたバージョン無しの配列は version 0 として読む。
// 壊れたデータは黙って捨てずに ErrCorruptSnapshot を返す。
func DecodeSnapshot(data []byte) (model.CartSnapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return model.CartSnapshot{}, fmt.Errorf("%w: empty payload", ErrCorruptSnapshot)
	}

	var snap model.CartSnapshot

	switch trimmed[0] {
	case '[':
		var items []model.LineItem
		if err := strictUnmarshal(trimmed, &items); err != nil {
			return model.CartSnapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		snap = model.CartSnapshot{Version: 0, Items: items}
	case '{':
		if err := strictUnmarshal(trimmed, &snap); err != nil {
			return model.CartSnapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		if snap.Version != model.CartSnapshotVersion {
			return model.CartSnapshot{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, snap.Version)
		}
	default:
		return model.CartSnapshot{}, fmt.Errorf("%w: unexpected payload", ErrCorruptSnapshot)
	}

	if snap.Items == nil {
		snap.Items = []model.LineItem{}
	}
	if err := checkItems(snap.Items); err != nil {
		return model.CartSnapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return snap, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}
