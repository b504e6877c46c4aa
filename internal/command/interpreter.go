// Package command classifies incoming chat text into the bot's closed set
// of intents.
//
// Interpret is a pure function of the text: for every input it returns
// exactly one Intent, with Echo as the universal fallback. Rules are
// evaluated in a fixed priority order and the first match wins. The order
// is a hard contract, not an implementation detail: the bare phrases
// 買う！/買った！ must short-circuit before the substring rules that extract
// an item name, or a bare 買う！ would produce an AddItem with an empty
// name instead of a clarifying question.
//
// Item-name extraction preserves the historical splitting behavior users
// depend on: the text is split on the literal keyword (買う or 買った) and
// the first segment is taken. For AddItem the segment is additionally cut
// at the first newline, so text pasted after a line break is discarded.
package command

import "strings"

// Kind identifies one member of the closed intent set.
type Kind int

// Intent kinds, in rule-priority order.
const (
	// KindPromptBuyItem: bare 買う！ with no item; ask what to buy.
	KindPromptBuyItem Kind = iota
	// KindPromptBoughtItem: bare 買った！ with no item; ask what was bought.
	KindPromptBoughtItem
	// KindWhoAmI: the sender asked for their own platform id.
	KindWhoAmI
	// KindHelp: any message mentioning ヘルプ.
	KindHelp
	// KindShowList: one of the fixed list aliases (リスト, りすと, メモ, …).
	KindShowList
	// KindMarkAllBought: 全部買った！; flip the whole list to bought.
	KindMarkAllBought
	// KindShowBought: 買ったもの; show the purchase history.
	KindShowBought
	// KindAddItem: 〇〇買う！; add the named item to the list.
	KindAddItem
	// KindMarkBought: 〇〇買った！; mark the named item bought.
	KindMarkBought
	// KindRecommend: おすすめ; reply with the seeded recommendation.
	KindRecommend
	// KindGreeting: any message containing おはよ.
	KindGreeting
	// KindEcho: fallback; echo the message with a help hint.
	KindEcho
)

// String returns a stable name for the kind, used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindPromptBuyItem:
		return "prompt_buy_item"
	case KindPromptBoughtItem:
		return "prompt_bought_item"
	case KindWhoAmI:
		return "who_am_i"
	case KindHelp:
		return "help"
	case KindShowList:
		return "show_list"
	case KindMarkAllBought:
		return "mark_all_bought"
	case KindShowBought:
		return "show_bought"
	case KindAddItem:
		return "add_item"
	case KindMarkBought:
		return "mark_bought"
	case KindRecommend:
		return "recommend"
	case KindGreeting:
		return "greeting"
	default:
		return "echo"
	}
}

// Intent is one interpreted user action. Item carries the extracted item
// name for AddItem/MarkBought; Raw carries the original text for Echo.
type Intent struct {
	Kind Kind
	Item string
	Raw  string
}

// listAliases are the exact texts that open the current list.
var listAliases = map[string]struct{}{
	"リスト":  {},
	"りすと":  {},
	"りすと！": {},
	"りすと!": {},
	"リスト！": {},
	"リスト!": {},
	"メモ":   {},
}

// recommendAliases are the exact texts that request the recommendation.
var recommendAliases = map[string]struct{}{
	"おすすめ":   {},
	"オススメ":   {},
	"おすすめ商品": {},
}

// Interpret maps free-form message text to exactly one Intent.
//
// Full-width ！ and half-width ! are both accepted, but no other
// normalization is applied: matching is exact by design, so 買う？ or a
// message with stray whitespace falls through to Echo like any other
// unrecognized text.
func Interpret(text string) Intent {
	switch text {
	case "買う！", "買う!":
		return Intent{Kind: KindPromptBuyItem}
	case "買った！", "買った!":
		return Intent{Kind: KindPromptBoughtItem}
	case "私のID":
		return Intent{Kind: KindWhoAmI}
	}
	if strings.Contains(text, "ヘルプ") {
		return Intent{Kind: KindHelp}
	}
	if _, ok := listAliases[text]; ok {
		return Intent{Kind: KindShowList}
	}
	if text == "全部買った！" || text == "全部買った!" {
		return Intent{Kind: KindMarkAllBought}
	}
	if text == "買ったもの" {
		return Intent{Kind: KindShowBought}
	}
	if strings.Contains(text, "買う！") || strings.Contains(text, "買う!") {
		return Intent{Kind: KindAddItem, Item: extractBeforeKeyword(text, "買う", true)}
	}
	if strings.Contains(text, "買った！") || strings.Contains(text, "買った!") {
		return Intent{Kind: KindMarkBought, Item: extractBeforeKeyword(text, "買った", false)}
	}
	if _, ok := recommendAliases[text]; ok {
		return Intent{Kind: KindRecommend}
	}
	if strings.Contains(text, "おはよ") {
		return Intent{Kind: KindGreeting}
	}
	return Intent{Kind: KindEcho, Raw: text}
}

// extractBeforeKeyword returns the text preceding the first occurrence of
// the keyword. With firstLine set, the segment is additionally truncated at
// the first newline.
func extractBeforeKeyword(text, keyword string, firstLine bool) string {
	seg := strings.Split(text, keyword)[0]
	if firstLine {
		seg = strings.Split(seg, "\n")[0]
	}
	return seg
}
