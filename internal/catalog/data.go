package catalog

import "gogaku_suite/internal/model"

// Quizzes は文法クイズの静的カタログ。IDは 1..N の連番。
var Quizzes = []Quiz{
	{
		ID:             1,
		Question:       "「〜してもいいですか」を韓国語で言うと？",
		Japanese:       "ここに座ってもいいですか。",
		KoreanTemplate: "여기에 앉아도 돼요?",
		Options: []model.QuizOption{
			{ID: 1, Text: "앉아도 돼요?"},
			{ID: 2, Text: "앉으면 돼요?"},
			{ID: 3, Text: "앉아야 돼요?"},
			{ID: 4, Text: "앉을 거예요?"},
		},
		CorrectOption: 1,
		Explanation:   "「動詞の아/어形 + 도 되다」で許可を求める表現になります。",
	},
	{
		ID:             2,
		Question:       "「〜しなければならない」にあたる語尾はどれ？",
		Japanese:       "明日までに宿題をしなければなりません。",
		KoreanTemplate: "내일까지 숙제를 해야 돼요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "해도 돼요"},
			{ID: 2, Text: "해야 돼요"},
			{ID: 3, Text: "하면 돼요"},
			{ID: 4, Text: "하고 있어요"},
		},
		CorrectOption: 2,
		Explanation:   "義務は「아/어야 되다(하다)」で表します。",
	},
	{
		ID:             3,
		Question:       "「食べたことがあります」の正しい形は？",
		Japanese:       "キンパを食べたことがあります。",
		KoreanTemplate: "김밥을 먹어 본 적이 있어요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "먹어 본 적이 있어요"},
			{ID: 2, Text: "먹고 싶어요"},
			{ID: 3, Text: "먹을 줄 알아요"},
			{ID: 4, Text: "먹는 중이에요"},
		},
		CorrectOption: 1,
		Explanation:   "経験は「아/어 본 적이 있다」で表します。",
	},
	{
		ID:             4,
		Question:       "「〜しながら」を表す接続語尾はどれ？",
		Japanese:       "音楽を聞きながら勉強します。",
		KoreanTemplate: "음악을 들으면서 공부해요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "듣고 나서"},
			{ID: 2, Text: "듣기 전에"},
			{ID: 3, Text: "들으면서"},
			{ID: 4, Text: "듣자마자"},
		},
		CorrectOption: 3,
		Explanation:   "同時動作は「(으)면서」。ㄷ変則で 듣다 → 들으면서 になります。",
	},
	{
		ID:             5,
		Question:       "丁寧な依頼「〜してください」はどれ？",
		Japanese:       "もう一度言ってください。",
		KoreanTemplate: "다시 한번 말해 주세요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "말해 주세요"},
			{ID: 2, Text: "말하세요?"},
			{ID: 3, Text: "말할까요"},
			{ID: 4, Text: "말했어요"},
		},
		CorrectOption: 1,
		Explanation:   "依頼は「아/어 주세요」。命令形の「(으)세요」より柔らかい表現です。",
	},
	{
		ID:             6,
		Question:       "「行こうと思います」にあたる表現は？",
		Japanese:       "週末に釜山へ行こうと思います。",
		KoreanTemplate: "주말에 부산에 가려고 해요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "가기로 해요"},
			{ID: 2, Text: "가려고 해요"},
			{ID: 3, Text: "가고 말아요"},
			{ID: 4, Text: "가자고 해요"},
		},
		CorrectOption: 2,
		Explanation:   "意図・計画は「(으)려고 하다」で表します。",
	},
	{
		ID:             7,
		Question:       "「〜するつもりでした（でもしなかった）」は？",
		Japanese:       "電話しようとしたけど、忘れてしまいました。",
		KoreanTemplate: "전화하려고 했는데 잊어버렸어요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "전화하려고 했는데"},
			{ID: 2, Text: "전화하고 싶은데"},
			{ID: 3, Text: "전화했으면서"},
			{ID: 4, Text: "전화하자마자"},
		},
		CorrectOption: 1,
		Explanation:   "実現しなかった意図は「(으)려고 했는데」で表します。",
	},
	{
		ID:             8,
		Question:       "可能表現「〜できる」はどれ？",
		Japanese:       "韓国語で手紙を書くことができます。",
		KoreanTemplate: "한국어로 편지를 쓸 수 있어요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "쓸 줄 몰라요"},
			{ID: 2, Text: "쓰면 안 돼요"},
			{ID: 3, Text: "쓸 수 있어요"},
			{ID: 4, Text: "쓰기로 했어요"},
		},
		CorrectOption: 3,
		Explanation:   "可能は「(으)ㄹ 수 있다」。不可能は「(으)ㄹ 수 없다」です。",
	},
	{
		ID:             9,
		Question:       "「〜みたいです・〜ようです」の推量表現は？",
		Japanese:       "外は雨が降っているようです。",
		KoreanTemplate: "밖에 비가 오는 것 같아요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "오는 것 같아요"},
			{ID: 2, Text: "오기 때문이에요"},
			{ID: 3, Text: "오는 편이에요"},
			{ID: 4, Text: "올 뻔했어요"},
		},
		CorrectOption: 1,
		Explanation:   "推量は「는 것 같다」。過去の推量は「(으)ㄴ 것 같다」になります。",
	},
	{
		ID:             10,
		Question:       "「〜する前に」を表すのはどれ？",
		Japanese:       "寝る前に歯を磨きます。",
		KoreanTemplate: "자기 전에 이를 닦아요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "잔 후에"},
			{ID: 2, Text: "자기 전에"},
			{ID: 3, Text: "자는 동안"},
			{ID: 4, Text: "자자마자"},
		},
		CorrectOption: 2,
		Explanation:   "「動詞の語幹 + 기 전에」で「〜する前に」です。",
	},
	{
		ID:             11,
		Question:       "逆接「〜だけど」の接続語尾はどれ？",
		Japanese:       "高いけど買いたいです。",
		KoreanTemplate: "비싸지만 사고 싶어요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "비싸서"},
			{ID: 2, Text: "비싸니까"},
			{ID: 3, Text: "비싸지만"},
			{ID: 4, Text: "비싸거나"},
		},
		CorrectOption: 3,
		Explanation:   "逆接は「지만」。「아/어서」「(으)니까」は理由を表します。",
	},
	{
		ID:             12,
		Question:       "「〜することにしました」の決定表現は？",
		Japanese:       "毎朝運動することにしました。",
		KoreanTemplate: "매일 아침 운동하기로 했어요.",
		Options: []model.QuizOption{
			{ID: 1, Text: "운동하기로 했어요"},
			{ID: 2, Text: "운동하려던 참이에요"},
			{ID: 3, Text: "운동할 뻔했어요"},
			{ID: 4, Text: "운동하곤 해요"},
		},
		CorrectOption: 1,
		Explanation:   "決定・約束は「기로 하다」で表します。",
	},
}
