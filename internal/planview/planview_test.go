package planview

import (
	"reflect"
	"strings"
	"testing"
)

const samplePlan = `🗓️ 2024년 3월 4일 (월) 중식 식단

🍚 잡곡밥
🍲 닭곰탕
🥬 배추김치
⚠️ 알레르기 정보: 우유, 계란, 땅콩

[메인 메뉴 레시피: 닭곰탕]
🔍 분석: 단백질이 풍부한 메뉴입니다
🛒 재료
- 닭가슴살 200g
- 양파 1개
🧑‍🍳 조리법
- 1단계: 닭을 삶습니다
1. 육수를 냅니다
2. 간을 합니다
📊 통계: 칼로리 700kcal
💡 팁: 파를 곁들이면 좋습니다: 향이 살아납니다
맛있게 드세요`

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    LineKind
		title   string
		content string
	}{
		{"Title", "🗓️ 3월 4일 식단", KindTitle, "", ""},
		{"MenuLabelRice", "🍚 잡곡밥", KindMenuLabel, "", ""},
		{"MenuLabelDrink", "🥤 우유", KindMenuLabel, "", ""},
		{"MenuLabelPlate", "🍽️ 오늘의 메뉴", KindMenuLabel, "", ""},
		{"RecipeSection", "[메인 메뉴 레시피: 닭곰탕]", KindRecipeSectionTitle, "", ""},
		{"NamedSectionWithContent", "📊 통계: 칼로리 700kcal", KindNamedSection, "📊 통계", "칼로리 700kcal"},
		{"NamedSectionTitleTrimmed", "📊 통계 : 칼로리", KindNamedSection, "📊 통계", "칼로리"},
		{"NamedSectionNoColon", "🛒 재료", KindNamedSection, "🛒 재료", ""},
		{"NamedSectionExtraColons", "💡 팁: a: b", KindNamedSection, "💡 팁", "a: b"},
		{"CookingSteps", "🧑‍🍳 조리법", KindNamedSection, "🧑‍🍳 조리법", ""},
		{"Unordered", "- 양파 1개", KindUnorderedItem, "", ""},
		{"Ordered", "1. 육수를 냅니다", KindOrderedItem, "", ""},
		{"OrderedMultiDigit", "12. 마무리", KindOrderedItem, "", ""},
		{"NoSpaceAfterDot", "1.5kg 감자", KindPlain, "", ""},
		{"DashWithoutSpace", "-양파", KindPlain, "", ""},
		{"Plain", "맛있게 드세요", KindPlain, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			if got.Kind != tt.kind {
				t.Fatalf("Expected kind %s, got %s", tt.kind, got.Kind)
			}
			if got.Title != tt.title || got.Content != tt.content {
				t.Errorf("Expected title/content %q/%q, got %q/%q", tt.title, tt.content, got.Title, got.Content)
			}
		})
	}
}

func TestExtractAllergens(t *testing.T) {
	t.Run("Parsed and removed", func(t *testing.T) {
		lines, allergens := ExtractAllergens(SplitLines("🍚 밥\n⚠️ 알레르기 정보: 우유, 계란, 땅콩\n🥤 우유"))
		if want := []string{"우유", "계란", "땅콩"}; !reflect.DeepEqual(allergens, want) {
			t.Errorf("Expected %v, got %v", want, allergens)
		}
		if len(lines) != 2 {
			t.Fatalf("Expected 2 remaining lines, got %d", len(lines))
		}
		for _, l := range lines {
			if strings.HasPrefix(l.Text, AllergenMarker) {
				t.Error("Allergen line was not removed")
			}
		}
	})

	t.Run("Empty pieces dropped", func(t *testing.T) {
		_, allergens := ExtractAllergens(SplitLines("⚠️ 알레르기 정보: 우유, , 밀,"))
		if want := []string{"우유", "밀"}; !reflect.DeepEqual(allergens, want) {
			t.Errorf("Expected %v, got %v", want, allergens)
		}
	})

	t.Run("Last line wins", func(t *testing.T) {
		lines, allergens := ExtractAllergens(SplitLines("⚠️ 알레르기 정보: 우유\n본문\n⚠️ 알레르기 정보: 대두, 밀"))
		if want := []string{"대두", "밀"}; !reflect.DeepEqual(allergens, want) {
			t.Errorf("Expected %v, got %v", want, allergens)
		}
		if len(lines) != 1 || lines[0].Text != "본문" {
			t.Errorf("Expected only the body line to remain, got %+v", lines)
		}
	})

	t.Run("Absent", func(t *testing.T) {
		_, allergens := ExtractAllergens(SplitLines("본문"))
		if allergens == nil || len(allergens) != 0 {
			t.Errorf("Expected empty non-nil slice, got %#v", allergens)
		}
	})
}

func TestExtractIngredients(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "Section closed by cooking steps",
			text: "🛒 재료\n- 닭가슴살 200g\n- 양파 1개\n🧑‍🍳 조리법\n- 1단계: ...",
			want: "닭가슴살 200g\n양파 1개",
		},
		{
			name: "Runs to end of input",
			text: "🛒 재료\n- 두부 1모\n- 대파 1대",
			want: "두부 1모\n대파 1대",
		},
		{
			name: "Closed by hints",
			text: "🛒 재료\n- 쌀 1kg\n💡 팁: 불려두세요\n- 무시됨",
			want: "쌀 1kg",
		},
		{
			name: "Closed by next recipe section",
			text: "🛒 재료\n- 감자 2개\n[메인 메뉴 레시피: 감자조림]\n- 간장",
			want: "감자 2개",
		},
		{
			name: "Stray lines skipped",
			text: "🛒 재료\n주재료\n- 소고기 300g\n1. 번호 항목\n- 무 1/2개",
			want: "소고기 300g\n무 1/2개",
		},
		{
			name: "Empty section",
			text: "🛒 재료\n🧑‍🍳 조리법\n- 1단계",
			want: "",
		},
		{
			name: "No marker",
			text: "- 양파\n- 마늘",
			want: "",
		},
		{
			name: "Other shopping marker does not open",
			text: "🛒 장보기 목록\n- 양파",
			want: "",
		},
		{
			name: "Payload not re-trimmed",
			text: "🛒 재료\n-  들기름 1큰술",
			want: " 들기름 1큰술",
		},
		{
			name: "Reopened section",
			text: "🛒 재료\n- 가\n💡 힌트\n🛒 재료\n- 나",
			want: "가\n나",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractIngredients(SplitLines(tt.text)); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGroupBlocks(t *testing.T) {
	t.Run("Adjacent unordered items coalesce", func(t *testing.T) {
		blocks := GroupBlocks(SplitLines("- a\n- b\n- c"))
		if len(blocks) != 1 || len(blocks[0].Lines) != 3 {
			t.Fatalf("Expected one block of 3, got %+v", blocks)
		}
	})

	t.Run("Kind change splits lists", func(t *testing.T) {
		blocks := GroupBlocks(SplitLines("- a\n1. b\n2. c\n- d"))
		if len(blocks) != 3 {
			t.Fatalf("Expected 3 blocks, got %d", len(blocks))
		}
		if blocks[0].Ordered() || !blocks[1].Ordered() || blocks[2].Ordered() {
			t.Errorf("Unexpected list kinds: %v %v %v", blocks[0].Ordered(), blocks[1].Ordered(), blocks[2].Ordered())
		}
		if len(blocks[1].Lines) != 2 {
			t.Errorf("Expected ordered block of 2, got %d", len(blocks[1].Lines))
		}
	})

	t.Run("Non-list line breaks a run", func(t *testing.T) {
		blocks := GroupBlocks(SplitLines("- a\n본문\n- b"))
		if len(blocks) != 3 {
			t.Fatalf("Expected 3 blocks, got %d", len(blocks))
		}
		if !blocks[0].IsList() || blocks[1].IsList() || !blocks[2].IsList() {
			t.Error("Expected list, leaf, list")
		}
	})

	t.Run("Singleton item is a list", func(t *testing.T) {
		blocks := GroupBlocks(SplitLines("제목\n1. 하나"))
		if len(blocks) != 2 || !blocks[1].IsList() {
			t.Fatalf("Expected trailing single-item list, got %+v", blocks)
		}
	})
}

func TestGroupBlocksFlattenPreservesLines(t *testing.T) {
	inputs := []string{
		samplePlan,
		"",
		"- a",
		"1. a\n- b\n1. c\n- d\n- e\n본문\n2. f",
		"본문\n본문\n본문",
		"🛒 재료\n- 가\n- 나\n🧑‍🍳 조리법\n1. 하나\n2. 둘",
	}

	for _, in := range inputs {
		lines := SplitLines(in)
		blocks := GroupBlocks(lines)
		flat := Flatten(blocks)
		if len(flat) != len(lines) {
			t.Fatalf("Expected %d lines after flatten, got %d for %q", len(lines), len(flat), in)
		}
		for i := range lines {
			if flat[i] != lines[i] {
				t.Errorf("Line %d differs: %+v vs %+v", i, flat[i], lines[i])
			}
		}
		for _, b := range blocks {
			if !b.IsList() {
				if len(b.Lines) != 1 {
					t.Errorf("Leaf block with %d lines", len(b.Lines))
				}
				continue
			}
			for _, l := range b.Lines {
				if l.Kind != b.Lines[0].Kind {
					t.Errorf("Mixed list kinds in block: %+v", b.Lines)
				}
			}
		}
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		text string
		want View
	}{
		{"Title", "🗓️ 3월 4일", View{Kind: ViewHeading, Level: 2, Text: "🗓️ 3월 4일"}},
		{"MenuLabel", "🍲 된장국", View{Kind: ViewParagraph, Text: "🍲 된장국", Emphasis: true}},
		{"RecipeSection", "[메인 메뉴 레시피: 불고기]", View{Kind: ViewSubheading, Level: 3, Text: "메인 메뉴 레시피: 불고기"}},
		{"Section", "📊 통계: 칼로리 700kcal", View{Kind: ViewSection, Title: "📊 통계", Content: "칼로리 700kcal"}},
		{"SectionNoContent", "🛒 재료", View{Kind: ViewSection, Title: "🛒 재료"}},
		{"Plain", "맛있게 드세요", View{Kind: ViewParagraph, Text: "맛있게 드세요"}},
		{"UnorderedList", "- 양파 1개\n- 마늘", View{Kind: ViewList, Items: []string{"양파 1개", "마늘"}}},
		{"OrderedList", "1. 씻기\n10. 끓이기", View{Kind: ViewList, Ordered: true, Items: []string{"씻기", "끓이기"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := GroupBlocks(SplitLines(tt.text))
			if len(blocks) != 1 {
				t.Fatalf("Expected 1 block, got %d", len(blocks))
			}
			if got := Render(blocks[0]); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParse(t *testing.T) {
	r := Parse(samplePlan)

	if want := []string{"우유", "계란", "땅콩"}; !reflect.DeepEqual(r.Allergens, want) {
		t.Errorf("Expected allergens %v, got %v", want, r.Allergens)
	}
	if r.IngredientsText != "닭가슴살 200g\n양파 1개" {
		t.Errorf("Unexpected ingredients text %q", r.IngredientsText)
	}
	if !r.OffersIngredientLookup() {
		t.Error("Expected the ingredient lookup to be offered")
	}

	for _, v := range r.Views {
		if strings.Contains(v.Text, "알레르기") {
			t.Error("Allergen line leaked into rendered blocks")
		}
	}

	// The cooking step stays visible even though it is not an ingredient.
	found := false
	for _, v := range r.Views {
		if v.Kind == ViewList && !v.Ordered && len(v.Items) == 1 && v.Items[0] == "1단계: 닭을 삶습니다" {
			found = true
		}
	}
	if !found {
		t.Error("Expected the cooking step to render as a list item")
	}

	last := r.Views[len(r.Views)-1]
	if last.Kind != ViewParagraph || last.Text != "맛있게 드세요" {
		t.Errorf("Unexpected last view %+v", last)
	}

	hint := r.Views[len(r.Views)-2]
	if hint.Title != "💡 팁" || hint.Content != "파를 곁들이면 좋습니다: 향이 살아납니다" {
		t.Errorf("Unexpected hint view %+v", hint)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	if a, b := Parse(samplePlan), Parse(samplePlan); !reflect.DeepEqual(a, b) {
		t.Error("Expected identical results for identical input")
	}
}

func TestParseUnmarkedText(t *testing.T) {
	r := Parse("안녕하세요\n\n   \n오늘은 휴일입니다\r\n")
	if len(r.Views) != 2 {
		t.Fatalf("Expected 2 views, got %d", len(r.Views))
	}
	for _, v := range r.Views {
		if v.Kind != ViewParagraph || v.Emphasis {
			t.Errorf("Expected plain paragraph, got %+v", v)
		}
	}
	if len(r.Allergens) != 0 || r.IngredientsText != "" || r.OffersIngredientLookup() {
		t.Errorf("Expected no allergens or ingredients, got %+v", r)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(Parse(samplePlan))

	expected := []string{
		"> **알레르기 주의 정보:** 우유, 계란, 땅콩",
		"## 🗓️ 2024년 3월 4일 (월) 중식 식단",
		"**🍚 잡곡밥**",
		"### 메인 메뉴 레시피: 닭곰탕",
		"#### 📊 통계\n\n칼로리 700kcal",
		"- 닭가슴살 200g\n- 양파 1개",
		"1. 육수를 냅니다\n2. 간을 합니다",
	}
	for _, sub := range expected {
		if !strings.Contains(md, sub) {
			t.Errorf("Expected markdown to contain %q", sub)
		}
	}
}

func TestParseByteOrderMarkAndNoBreakSpace(t *testing.T) {
	text := "\ufeff⚠️ 알레르기 정보: 우유\u00a0, 대두\n🛒 재료\n- 두부 1모\n1.\u00a0육수를 낸다\n\u00a0🍚 잡곡밥\u00a0"
	r := Parse(text)

	if !reflect.DeepEqual(r.Allergens, []string{"우유", "대두"}) {
		t.Errorf("expected allergens after a byte-order mark, got %v", r.Allergens)
	}
	if r.IngredientsText != "두부 1모" {
		t.Errorf("unexpected ingredients %q", r.IngredientsText)
	}

	if got := Classify("1.\u00a0육수").Kind; got != KindOrderedItem {
		t.Errorf("expected a no-break space after the number to mark an ordered item, got %s", got)
	}

	last := r.Views[len(r.Views)-1]
	if last.Kind != ViewParagraph || last.Text != "🍚 잡곡밥" || !last.Emphasis {
		t.Errorf("expected trimmed menu label, got %+v", last)
	}
	var ordered *View
	for i := range r.Views {
		if r.Views[i].Kind == ViewList && r.Views[i].Ordered {
			ordered = &r.Views[i]
		}
	}
	if ordered == nil || ordered.Items[0] != "육수를 낸다" {
		t.Errorf("expected ordered list item without marker, got %+v", ordered)
	}
}

func TestGroupBlocksAppendDoesNotLeak(t *testing.T) {
	lines := SplitLines("- 양파\n- 마늘\n🍚 잡곡밥\n1. 볶는다")
	blocks := GroupBlocks(lines)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}

	blocks[0].Lines = append(blocks[0].Lines, Classify("- 대파"))
	blocks[1].Lines = append(blocks[1].Lines, Classify("🥗 샐러드"))

	if blocks[1].Lines[0].Text != "🍚 잡곡밥" {
		t.Errorf("appending to one block changed the next: %q", blocks[1].Lines[0].Text)
	}
	if blocks[2].Lines[0].Text != "1. 볶는다" {
		t.Errorf("appending to one block changed the next: %q", blocks[2].Lines[0].Text)
	}
	if lines[2].Text != "🍚 잡곡밥" || lines[3].Text != "1. 볶는다" {
		t.Errorf("appending to a block changed the input lines: %+v", lines)
	}
}
