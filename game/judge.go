package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"rpsserver/models"
	"rpsserver/store"

	"go.uber.org/zap"
)

// beats は手Aが手Bに勝つ関係です。
var beats = map[string]string{
	models.ChooseRock:     models.ChooseScissors,
	models.ChooseScissors: models.ChoosePaper,
	models.ChoosePaper:    models.ChooseRock,
}

func validChoose(choose string) bool {
	_, ok := beats[choose]
	return ok
}

// RoundOutcome は1回のスタート/レディ操作の結果です。
// Resolved が false の場合、今回の操作ではラウンドの勝敗は決まっていません
// （まだ全員がレディでない、または手が2種類に割れなかった）。
type RoundOutcome struct {
	State    string   `json:"state"`
	Resolved bool     `json:"resolved"`
	Winners  []string `json:"winners,omitempty"` // 今ラウンドの勝者（メールアドレス）
	Losers   []string `json:"losers,omitempty"`
	Ended    bool     `json:"ended"`
}

// GameStart はルームマスターによる明示的なマッチ開始です。
// 待機状態のルームで全員のレディと有効な手が揃っている場合のみ、
// 最初のラウンドを解決します。
func GameStart(ctx context.Context, st store.Store, logger *zap.Logger, email, roomID string) (*RoundOutcome, error) {
	if email == "" {
		return nil, ErrUnauthenticated
	}
	if roomID == "" {
		return nil, &ValidationError{Field: "roomId", Reason: "must not be empty"}
	}

	var outcome *RoundOutcome
	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		var room models.Room
		if err := tx.Get(ctx, colRooms, roomID, &room); err != nil {
			return fmt.Errorf("room %s: %w", roomID, err)
		}
		if room.RoomMaster != email {
			return &StateError{Reason: "only the room master can start the match"}
		}
		if room.State != models.RoomStateWaiting {
			return &StateError{Reason: "room is not in waiting state"}
		}
		cond := ParseCondition(room.GameConditionKey)
		if cond == ConditionUnknown {
			return &ValidationError{Field: "gameConditionKey", Reason: "unknown game condition"}
		}

		roster, chooses, emails, err := readRoster(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if cond == Survivors && room.GameConditionValue >= len(roster) {
			return &ValidationError{Field: "gameConditionValue", Reason: "must be less than the roster size"}
		}
		for _, member := range emails {
			if !roster[member].Ready {
				return &StateError{Reason: "not all gamers are ready"}
			}
			if !validChoose(chooses[member].NowChoose) {
				return &ValidationError{Field: "choose", Reason: "invalid choice submitted"}
			}
		}

		playing := playingMembers(roster, emails)
		outcome, err = resolveRound(tx, cond, &room, roster, chooses, playing)
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !isDomainError(err) {
			logger.Error("マッチ開始に失敗しました", zap.String("roomId", roomID), zap.String("email", email), zap.Error(err))
		}
		return nil, err
	}
	logger.Info("マッチを開始しました",
		zap.String("roomId", roomID),
		zap.String("state", outcome.State),
		zap.Bool("resolved", outcome.Resolved),
	)
	return outcome, nil
}

// GameReady は現在ラウンドの手を提出し、レディ状態にします。
// マッチ進行中（start）は、対戦中メンバー全員のレディが揃った時点で
// 追加のスタート操作なしにラウンドが自動解決されます。
func GameReady(ctx context.Context, st store.Store, logger *zap.Logger, email, roomID, choose string) (*RoundOutcome, error) {
	if email == "" {
		return nil, ErrUnauthenticated
	}
	if roomID == "" {
		return nil, &ValidationError{Field: "roomId", Reason: "must not be empty"}
	}
	if !validChoose(choose) {
		return nil, &ValidationError{Field: "choose", Reason: "must be rock, paper or scissors"}
	}

	var outcome *RoundOutcome
	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		var room models.Room
		if err := tx.Get(ctx, colRooms, roomID, &room); err != nil {
			return fmt.Errorf("room %s: %w", roomID, err)
		}
		var gamer models.Gamer
		if err := tx.Get(ctx, colGamers, email, &gamer); err != nil {
			return fmt.Errorf("gamer %s: %w", email, err)
		}
		if room.State == models.RoomStateEnd {
			return &StateError{Reason: "the match has already ended"}
		}
		if gamer.JoinedRoomID != roomID {
			return &StateError{Reason: "not a member of this room"}
		}
		cond := ParseCondition(room.GameConditionKey)
		if cond == ConditionUnknown {
			return &ValidationError{Field: "gameConditionKey", Reason: "unknown game condition"}
		}

		roster, chooses, emails, err := readRoster(ctx, tx, roomID)
		if err != nil {
			return err
		}
		entry, ok := roster[email]
		if !ok {
			return fmt.Errorf("roster entry %s: %w", email, store.ErrNotFound)
		}
		if entry.Result != models.ResultGaming {
			return &StateError{Reason: "already finished playing"}
		}
		if entry.Ready {
			return &StateError{Reason: "already ready for this round"}
		}

		entry.Ready = true
		chooses[email].NowChoose = choose

		playing := playingMembers(roster, emails)
		if room.State == models.RoomStateWaiting || !allReady(roster, playing) {
			// マッチ未開始、または他のメンバー待ち。自分の提出だけをコミットする
			if err := tx.Update(roomGamersCol(roomID), email, map[string]interface{}{"ready": true}); err != nil {
				return err
			}
			if err := tx.Update(roomChoosesCol(roomID), email, map[string]interface{}{"nowChoose": choose}); err != nil {
				return err
			}
			outcome = &RoundOutcome{State: room.State}
			return nil
		}

		// 最後のレディだったのでこの操作がラウンドを解決する
		outcome, err = resolveRound(tx, cond, &room, roster, chooses, playing)
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !isDomainError(err) {
			logger.Error("レディ処理に失敗しました", zap.String("roomId", roomID), zap.String("email", email), zap.Error(err))
		}
		return nil, err
	}
	return outcome, nil
}

// resolveRound は明示スタートとレディ自動スタートの両経路で共有される
// ラウンド解決処理です。playing の nowChoose を prevChoose へ退避して
// レディをクリアし、手がちょうど2種類に割れた場合のみ勝敗を判定して
// ポリシーを適用します。名簿・手・ルームの全ドキュメントを
// 同一コミットで書き戻します。
func resolveRound(tx store.Tx, cond GameCondition, room *models.Room, roster map[string]*models.RoomGamer, chooses map[string]*models.RoomGamerChoose, playing []string) (*RoundOutcome, error) {
	distinct := make(map[string]bool)
	for _, email := range playing {
		entry := roster[email]
		entry.PrevChoose = chooses[email].NowChoose
		entry.Ready = false
		chooses[email].NowChoose = ""
		distinct[entry.PrevChoose] = true
	}
	room.State = models.RoomStateStart

	outcome := &RoundOutcome{}
	// あいこ（全員同じ手）や3すくみはラウンド不成立
	if len(distinct) == 2 {
		var pair []string
		for choose := range distinct {
			pair = append(pair, choose)
		}
		winChoose := pair[0]
		if beats[pair[1]] == pair[0] {
			winChoose = pair[1]
		}

		var winners, losers []string
		for _, email := range playing {
			if roster[email].PrevChoose == winChoose {
				winners = append(winners, email)
			} else {
				losers = append(losers, email)
			}
		}
		if cond.apply(room, roster, winners, losers) {
			room.State = models.RoomStateEnd
		}
		outcome.Resolved = true
		outcome.Winners = winners
		outcome.Losers = losers
		outcome.Ended = room.State == models.RoomStateEnd
	}

	for email, entry := range roster {
		if err := tx.Set(roomGamersCol(room.RoomID), email, entry); err != nil {
			return nil, err
		}
		if err := tx.Set(roomChoosesCol(room.RoomID), email, chooses[email]); err != nil {
			return nil, err
		}
	}
	if err := tx.Set(colRooms, room.RoomID, room); err != nil {
		return nil, err
	}
	outcome.State = room.State
	return outcome, nil
}

// readRoster は名簿と手のコレクションを読み、メールアドレス順のキー一覧と共に返します。
func readRoster(ctx context.Context, tx store.Reader, roomID string) (map[string]*models.RoomGamer, map[string]*models.RoomGamerChoose, []string, error) {
	docs, err := tx.List(ctx, roomGamersCol(roomID), store.ListOptions{})
	if err != nil {
		return nil, nil, nil, err
	}
	chooseDocs, err := tx.List(ctx, roomChoosesCol(roomID), store.ListOptions{})
	if err != nil {
		return nil, nil, nil, err
	}

	roster := make(map[string]*models.RoomGamer, len(docs))
	emails := make([]string, 0, len(docs))
	for _, doc := range docs {
		var entry models.RoomGamer
		if err := json.Unmarshal(doc.Data, &entry); err != nil {
			return nil, nil, nil, err
		}
		roster[doc.ID] = &entry
		emails = append(emails, doc.ID)
	}
	sort.Strings(emails)

	chooses := make(map[string]*models.RoomGamerChoose, len(chooseDocs))
	for _, doc := range chooseDocs {
		var choose models.RoomGamerChoose
		if err := json.Unmarshal(doc.Data, &choose); err != nil {
			return nil, nil, nil, err
		}
		chooses[doc.ID] = &choose
	}
	for _, email := range emails {
		// 名簿と手のキー集合は常に一致しているべき不変条件
		if _, ok := chooses[email]; !ok {
			return nil, nil, nil, fmt.Errorf("choose entry %s: %w", email, store.ErrNotFound)
		}
	}
	return roster, chooses, emails, nil
}

func playingMembers(roster map[string]*models.RoomGamer, emails []string) []string {
	var playing []string
	for _, email := range emails {
		if roster[email].Result == models.ResultGaming {
			playing = append(playing, email)
		}
	}
	return playing
}

func allReady(roster map[string]*models.RoomGamer, emails []string) bool {
	for _, email := range emails {
		if !roster[email].Ready {
			return false
		}
	}
	return true
}
