package catalog

// OndokuPassage は音読課題1件分の静的定義。
// 期 (0..7) × 課題番号 (0..9) で引く。
type OndokuPassage struct {
	PeriodIndex int    `json:"period_index"`
	ItemIndex   int    `json:"item_index"`
	Title       string `json:"title"`
	Text        string `json:"text"`
}

// WritingExample は作文アプリの例題プロンプト
type WritingExample struct {
	TitleKo     string `json:"title_ko"`
	TitleJa     string `json:"title_ja"`
	Description string `json:"description"`
}

var ondokuTitles = [8][10]string{
	{"自己紹介", "私の一日", "好きな食べ物", "私の町", "週末の予定", "家族の紹介", "趣味について", "季節の話", "買い物", "初めての旅行"},
	{"学校生活", "アルバイト", "友達との約束", "映画の感想", "好きな音楽", "料理の作り方", "電車での出来事", "病院にて", "引っ越し", "誕生日"},
	{"会社の朝", "昼休み", "残業の日", "出張の準備", "上司との会話", "会議にて", "社内ニュース", "歓迎会", "退勤後", "休暇の計画"},
	{"昔の思い出", "将来の夢", "忘れられない言葉", "失敗談", "感謝したい人", "習慣について", "健康のために", "読書の秋", "雨の日", "雪の日"},
	{"ニュースを見て", "環境問題", "スマートフォン", "インターネット", "伝統文化", "祭りの日", "外国語学習", "翻訳の難しさ", "言葉の違い", "敬語について"},
	{"面接の日", "履歴書", "新しい仕事", "職場の人間関係", "目標設定", "自己評価", "プレゼン", "報告書", "電話応対", "メールの書き方"},
	{"紀行文", "美術館にて", "コンサート", "写真を撮る", "手紙を書く", "贈り物", "再会", "別れ", "約束", "夢の話"},
	{"スピーチ原稿", "討論", "意見文", "説明文", "物語の朗読", "詩の朗読", "ニュース原稿", "インタビュー", "実況", "卒業の言葉"},
}

// OndokuCatalog は全期・全課題の静的カタログを返します
func OndokuCatalog() []OndokuPassage {
	passages := make([]OndokuPassage, 0, 80)
	for period := 0; period < 8; period++ {
		for item := 0; item < 10; item++ {
			passages = append(passages, OndokuPassage{
				PeriodIndex: period,
				ItemIndex:   item,
				Title:       ondokuTitles[period][item],
				Text:        "課題文は教材ページを参照してください。",
			})
		}
	}
	return passages
}

// WritingExamples は作文アプリの例題一覧
var WritingExamples = []WritingExample{
	{TitleKo: "자기소개", TitleJa: "自己紹介", Description: "200字程度で自己紹介を書いてみましょう。"},
	{TitleKo: "나의 하루", TitleJa: "私の一日", Description: "朝起きてから寝るまでを時系列で書きます。"},
	{TitleKo: "좋아하는 계절", TitleJa: "好きな季節", Description: "理由を2つ以上挙げて書きましょう。"},
	{TitleKo: "주말 계획", TitleJa: "週末の計画", Description: "「(으)려고 하다」を使ってみましょう。"},
}
