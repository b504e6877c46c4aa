package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInterpret_ExactPhrases(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"bare buy fullwidth", "買う！", Intent{Kind: KindPromptBuyItem}},
		{"bare buy halfwidth", "買う!", Intent{Kind: KindPromptBuyItem}},
		{"bare bought fullwidth", "買った！", Intent{Kind: KindPromptBoughtItem}},
		{"bare bought halfwidth", "買った!", Intent{Kind: KindPromptBoughtItem}},
		{"who am i", "私のID", Intent{Kind: KindWhoAmI}},
		{"mark all fullwidth", "全部買った！", Intent{Kind: KindMarkAllBought}},
		{"mark all halfwidth", "全部買った!", Intent{Kind: KindMarkAllBought}},
		{"show bought", "買ったもの", Intent{Kind: KindShowBought}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Interpret(tc.text)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Interpret(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func TestInterpret_ListAliases(t *testing.T) {
	for _, text := range []string{"リスト", "りすと", "りすと！", "りすと!", "リスト！", "リスト!", "メモ"} {
		got := Interpret(text)
		if got.Kind != KindShowList {
			t.Errorf("Interpret(%q).Kind = %s, want show_list", text, got.Kind)
		}
	}
}

func TestInterpret_RecommendAliases(t *testing.T) {
	for _, text := range []string{"おすすめ", "オススメ", "おすすめ商品"} {
		got := Interpret(text)
		if got.Kind != KindRecommend {
			t.Errorf("Interpret(%q).Kind = %s, want recommend", text, got.Kind)
		}
	}
}

func TestInterpret_SubstringRules(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"add item", "牛乳買う！", Intent{Kind: KindAddItem, Item: "牛乳"}},
		{"add item halfwidth", "パン買う!", Intent{Kind: KindAddItem, Item: "パン"}},
		{"mark bought", "牛乳買った！", Intent{Kind: KindMarkBought, Item: "牛乳"}},
		{"mark bought halfwidth", "卵買った!", Intent{Kind: KindMarkBought, Item: "卵"}},
		{"help anywhere", "えっと、ヘルプを見たい", Intent{Kind: KindHelp}},
		{"greeting anywhere", "みなさんおはよう", Intent{Kind: KindGreeting}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Interpret(tc.text)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Interpret(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

// The bare phrases must win over the substring extraction rules; otherwise
// a lone 買う！ would add an item with an empty name.
func TestInterpret_BarePhrasesBeatExtraction(t *testing.T) {
	if got := Interpret("買う！"); got.Kind != KindPromptBuyItem || got.Item != "" {
		t.Fatalf("Interpret(買う！) = %+v, want prompt_buy_item with no item", got)
	}
	if got := Interpret("買った！"); got.Kind != KindPromptBoughtItem || got.Item != "" {
		t.Fatalf("Interpret(買った！) = %+v, want prompt_bought_item with no item", got)
	}
	// 全部買った！ contains 買った！ but is its own command.
	if got := Interpret("全部買った！"); got.Kind != KindMarkAllBought {
		t.Fatalf("Interpret(全部買った！).Kind = %s, want mark_all_bought", got.Kind)
	}
	// A list alias used as an item name still adds the item.
	if got := Interpret("リスト買う！"); got.Kind != KindAddItem || got.Item != "リスト" {
		t.Fatalf("Interpret(リスト買う！) = %+v, want add_item リスト", got)
	}
}

func TestInterpret_AddItemNewlineTruncation(t *testing.T) {
	got := Interpret("牛乳\nとパン買う！")
	if got.Kind != KindAddItem {
		t.Fatalf("Kind = %s, want add_item", got.Kind)
	}
	if got.Item != "牛乳" {
		t.Errorf("Item = %q, want 牛乳 (cut at first newline)", got.Item)
	}

	// 買った！ extraction keeps the whole leading segment.
	got = Interpret("牛乳\nとパン買った！")
	if got.Kind != KindMarkBought || got.Item != "牛乳\nとパン" {
		t.Errorf("Interpret(mark bought with newline) = %+v", got)
	}
}

func TestInterpret_EchoFallback(t *testing.T) {
	for _, text := range []string{"", "こんにちは", "買う？", " リスト", "kaimono", "買いたい"} {
		got := Interpret(text)
		if got.Kind != KindEcho {
			t.Errorf("Interpret(%q).Kind = %s, want echo", text, got.Kind)
			continue
		}
		if got.Raw != text {
			t.Errorf("Interpret(%q).Raw = %q, want original text", text, got.Raw)
		}
	}
}

// Interpret is a pure function: same input, same intent.
func TestInterpret_Deterministic(t *testing.T) {
	for _, text := range []string{"牛乳買う！", "リスト", "全部買った！", "なにか"} {
		first := Interpret(text)
		for i := 0; i < 3; i++ {
			if diff := cmp.Diff(first, Interpret(text)); diff != "" {
				t.Fatalf("Interpret(%q) not deterministic (-first +again):\n%s", text, diff)
			}
		}
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindPromptBuyItem:    "prompt_buy_item",
		KindPromptBoughtItem: "prompt_bought_item",
		KindWhoAmI:           "who_am_i",
		KindHelp:             "help",
		KindShowList:         "show_list",
		KindMarkAllBought:    "mark_all_bought",
		KindShowBought:       "show_bought",
		KindAddItem:          "add_item",
		KindMarkBought:       "mark_bought",
		KindRecommend:        "recommend",
		KindGreeting:         "greeting",
		KindEcho:             "echo",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
