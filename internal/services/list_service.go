// Package services – ListService
//
// This file implements the List Engine: it interprets an incoming text
// message, applies the resulting intent against the store, and produces the
// reply text sent back to the user. Selected intents additionally emit a
// fire-and-forget audit notification to the operations channel.
//
// Contract: every message deterministically yields a reply. "Not found"
// outcomes (unknown user, missing item, unseeded recommendation) are
// recovered locally into informational texts and never surface to the
// transport layer; only infrastructure failures return an error. All store
// mutations are committed before the reply is returned, so the reply always
// reflects post-mutation state.
//
// Observability: Reply is OpenTelemetry-instrumented; spans carry the
// sender id and the interpreted intent, and every handled command bumps the
// per-intent Prometheus counter.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mshida/kaimono-bot/internal/command"
	"github.com/mshida/kaimono-bot/internal/domain"
	"github.com/mshida/kaimono-bot/internal/notify"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Reply texts. The Japanese phrasing is part of the bot's observable
// behavior; tests assert against these constants.
const (
	ReplyPromptBuy    = "何を買うんですか？"
	ReplyPromptBought = "何を買ったんですか？"
	ReplyHelp         = "操作コマンド\n\n〇〇買う！\n＝＞〇〇をリストにいれるよ♪\n〇〇買った！\n＝＞〇〇をリストから外すよ♪\nリスト！\n＝＞リストを表示するよ\nおすすめ！\n＝＞只今、準備中・・・。\nhttps://amzn.to/2F74c9L"
	ReplyListHeader   = "現在のお買い物リストです。"
	ReplyNoListYet    = "まだお買い物リストがないよ！「〇〇買う！」でアイテムを追加してね♪"
	ReplyNoUserYet    = "ユーザーが作成されていません！お問い合わせください!"
	ReplyAllBought    = "全部買ったのでお買い物リストから取り除いたよ！"
	ReplyRegistered   = "ユーザー登録をしたよ！"
	ReplyBoughtHeader = "今まで買ったもの"
	ReplyNoRecommend  = "おすすめはただいま準備中・・・。また今度聞いてみてね！"
	ReplyGreeting     = "おはようございます！"
)

// lineIDPrefixLen is how many leading characters of a LINE user id appear
// in audit notifications. Enough to correlate activity, not enough to
// reconstruct the id.
const lineIDPrefixLen = 5

// ListRepo defines the repository contract required by ListService.
// Implementations are responsible for persistence of users, items, and
// recommendation records.
type ListRepo interface {
	// FindUserByLineID fetches the user for a LINE id, or repo.ErrNotFound.
	FindUserByLineID(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error)

	// CreateUser inserts a user row for a previously unseen LINE id.
	CreateUser(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error)

	// CreateItem inserts a new unbought item for the user.
	CreateItem(ctx context.Context, db *gorm.DB, userID, name string) (*domain.Item, error)

	// ListItems returns the user's items with the given bought status,
	// oldest first.
	ListItems(ctx context.Context, db *gorm.DB, userID string, bought bool) ([]domain.Item, error)

	// FirstUnboughtItemByName returns the oldest unbought item with an
	// exactly matching name, or repo.ErrNotFound.
	FirstUnboughtItemByName(ctx context.Context, db *gorm.DB, userID, name string) (*domain.Item, error)

	// MarkItemBought flips one item to bought.
	MarkItemBought(ctx context.Context, db *gorm.DB, id string) error

	// MarkAllItemsBought flips every unbought item for the user in one
	// statement and reports the number of rows changed.
	MarkAllItemsBought(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// FirstItemURL returns the seeded recommendation, or repo.ErrNotFound.
	FirstItemURL(ctx context.Context, db *gorm.DB) (*domain.ItemURL, error)
}

// ListService applies interpreted commands against the shopping-list store
// and builds reply texts. It holds no mutable state of its own; all
// coordination happens through the store.
type ListService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the list repository used by this service.
	Repo ListRepo
	// Notifier receives audit events; it must already be a no-op when the
	// operations channel is unconfigured.
	Notifier notify.Notifier
}

// NewListService constructs a ListService. A nil notifier degrades to the
// no-op notifier.
func NewListService(db *gorm.DB, r ListRepo, n notify.Notifier) *ListService {
	if n == nil {
		n = notify.Nop{}
	}
	return &ListService{DB: db, Repo: r, Notifier: n}
}

// Reply interprets text from the sender identified by lineUserID, applies
// the intent, and returns the reply. An error is returned only for
// infrastructure failures; every interpretable outcome is a reply text.
func (s *ListService) Reply(ctx context.Context, lineUserID, text string) (string, error) {
	intent := command.Interpret(text)

	tr := otel.Tracer("services/ListService")
	ctx, span := tr.Start(ctx, "Reply",
		trace.WithAttributes(
			attribute.String("line.user_id", lineUserID),
			attribute.String("bot.intent", intent.Kind.String()),
		),
	)
	defer span.End()

	commandsTotal.WithLabelValues(intent.Kind.String()).Inc()

	switch intent.Kind {
	case command.KindPromptBuyItem:
		return ReplyPromptBuy, nil
	case command.KindPromptBoughtItem:
		return ReplyPromptBought, nil
	case command.KindWhoAmI:
		return lineUserID, nil
	case command.KindHelp:
		return ReplyHelp, nil
	case command.KindShowList:
		return s.showList(ctx, lineUserID)
	case command.KindMarkAllBought:
		return s.markAllBought(ctx, lineUserID)
	case command.KindShowBought:
		return s.showBought(ctx, lineUserID)
	case command.KindAddItem:
		return s.addItem(ctx, lineUserID, intent.Item)
	case command.KindMarkBought:
		return s.markBought(ctx, lineUserID, intent.Item)
	case command.KindRecommend:
		return s.recommend(ctx)
	case command.KindGreeting:
		return ReplyGreeting, nil
	default:
		s.Notifier.Notify(ctx, fmt.Sprintf("%sの未対応メッセージ: %s", idPrefix(lineUserID), intent.Raw))
		return "あなたがおっしゃったことは" + intent.Raw + "ですね。\n操作について知りたい時は、「ヘルプ」と入力してみてね！", nil
	}
}

// findUser resolves the sender's user row, classifying the missing-row case
// as ErrUserNotFound so call sites can pattern-match {found, not-found}.
func (s *ListService) findUser(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error) {
	user, err := s.Repo.FindUserByLineID(ctx, db, lineUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// showList replies with the sender's current (unbought) list. A sender with
// no user row gets the informational "no list yet" reply instead of an
// error.
func (s *ListService) showList(ctx context.Context, lineUserID string) (string, error) {
	user, err := s.findUser(ctx, s.DB, lineUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ReplyNoListYet, nil
		}
		return "", err
	}

	items, err := s.Repo.ListItems(ctx, s.DB, user.ID, false)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.Name)
		b.WriteString("\n")
	}

	s.Notifier.Notify(ctx, idPrefix(lineUserID)+"がリストを開いたよ！")
	return ReplyListHeader + "\n\n" + b.String(), nil
}

// markAllBought flips the sender's whole list to bought. Unknown senders
// get the informational reply and no mutation; running it again with an
// already-empty list is a no-op, not an error.
func (s *ListService) markAllBought(ctx context.Context, lineUserID string) (string, error) {
	user, err := s.findUser(ctx, s.DB, lineUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ReplyNoUserYet, nil
		}
		return "", err
	}

	if _, err := s.Repo.MarkAllItemsBought(ctx, s.DB, user.ID); err != nil {
		return "", err
	}
	return ReplyAllBought, nil
}

// showBought replies with everything the sender has bought so far plus a
// count line.
func (s *ListService) showBought(ctx context.Context, lineUserID string) (string, error) {
	user, err := s.findUser(ctx, s.DB, lineUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ReplyNoListYet, nil
		}
		return "", err
	}

	items, err := s.Repo.ListItems(ctx, s.DB, user.ID, true)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.Name)
		b.WriteString("\n")
	}
	return fmt.Sprintf("%s\n\n%s合計 %d 個買ったよ！", ReplyBoughtHeader, b.String(), len(items)), nil
}

// addItem inserts a new list entry, creating the user first when the sender
// is unknown. User creation and the item insert share one transaction so a
// failed insert does not leave a half-registered account.
func (s *ListService) addItem(ctx context.Context, lineUserID, name string) (string, error) {
	var created bool
	var user *domain.User

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = s.Repo.FindUserByLineID(ctx, tx, lineUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user, err = s.Repo.CreateUser(ctx, tx, lineUserID)
			created = true
		}
		if err != nil {
			return err
		}
		_, err = s.Repo.CreateItem(ctx, tx, user.ID, name)
		return err
	})
	if err != nil {
		return "", err
	}

	if created {
		s.Notifier.Notify(ctx, "新規アカウントが作成されたよ！"+lineUserID)
	}
	s.Notifier.Notify(ctx, idPrefix(lineUserID)+"が"+name+"を追加したよ！")
	return name + " をお買い物リストに入れたよ！", nil
}

// markBought marks the oldest unbought item with the given name as bought.
// An unknown sender gets registered and told so, without attempting the
// lookup; a missing item yields an explicit "not found" reply.
func (s *ListService) markBought(ctx context.Context, lineUserID, name string) (string, error) {
	user, err := s.findUser(ctx, s.DB, lineUserID)
	if errors.Is(err, ErrUserNotFound) {
		if _, cerr := s.Repo.CreateUser(ctx, s.DB, lineUserID); cerr != nil {
			return "", cerr
		}
		s.Notifier.Notify(ctx, "新規アカウントが作成されたよ！"+lineUserID)
		return ReplyRegistered, nil
	}
	if err != nil {
		return "", err
	}

	item, err := s.findUnboughtItem(ctx, user.ID, name)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return "「" + name + "」はリストに見つからなかったよ。もう一度確認してみてね！", nil
		}
		return "", err
	}

	if err := s.Repo.MarkItemBought(ctx, s.DB, item.ID); err != nil {
		return "", err
	}

	s.Notifier.Notify(ctx, idPrefix(lineUserID)+"が"+name+"を買ったよ！")
	return name + " をお買い物リストから除いたよ！", nil
}

// findUnboughtItem resolves the oldest unbought item with the given name,
// classifying the missing-row case as ErrItemNotFound.
func (s *ListService) findUnboughtItem(ctx context.Context, userID, name string) (*domain.Item, error) {
	item, err := s.Repo.FirstUnboughtItemByName(ctx, s.DB, userID, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	return item, err
}

// recommend replies with the seeded recommendation, degrading gracefully
// when none exists.
func (s *ListService) recommend(ctx context.Context) (string, error) {
	rec, err := s.Repo.FirstItemURL(ctx, s.DB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrNoRecommendation
		}
		if errors.Is(err, ErrNoRecommendation) {
			return ReplyNoRecommend, nil
		}
		return "", err
	}
	return "作者志田による最近のおすすめ！\nお水をおうちに置いておこう！\n" + rec.URL, nil
}

// idPrefix truncates a LINE user id to the audit prefix length.
func idPrefix(id string) string {
	r := []rune(id)
	if len(r) <= lineIDPrefixLen {
		return id
	}
	return string(r[:lineIDPrefixLen])
}
