package tilemap

// Resolve finds the tileset owning a global tile id and the pixel offset of
// the tile inside that tileset's image. Tilesets are scanned in order and the
// last one whose FirstGID does not exceed id wins. ok is false for id 0 and
// for ids below every tileset.
func Resolve(id int, tilesets []TilesetRef) (ref TilesetRef, offsetX, offsetY int, ok bool) {
	if id <= 0 {
		return TilesetRef{}, 0, 0, false
	}

	for _, ts := range tilesets {
		if ts.FirstGID > id {
			break
		}
		ref = ts
		ok = true
	}
	if !ok || ref.Columns <= 0 {
		return TilesetRef{}, 0, 0, false
	}

	local := id - ref.FirstGID
	offsetX = (local % ref.Columns) * TileSize
	offsetY = (local / ref.Columns) * TileSize
	return ref, offsetX, offsetY, true
}

// Resolve is a convenience wrapper over the package function using the map's tilesets.
func (m *TileMap) Resolve(id int) (TilesetRef, int, int, bool) {
	return Resolve(id, m.Tilesets)
}
