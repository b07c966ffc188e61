package game

// ドキュメントストア上のコレクション名。
// game-rooms 配下の2つはルームIDでスコープされるサブコレクションです。
const (
	colGamers = "gamers"
	colRooms  = "game-rooms"
)

func roomGamersCol(roomID string) string {
	return colRooms + "/" + roomID + "/gamers"
}

func roomChoosesCol(roomID string) string {
	return colRooms + "/" + roomID + "/room-gamers-choose"
}
