package catalog

import "github.com/dreamcandylab/candylab-backend/pkg/enums"

const (
	TagBestSeller = "베스트셀러"
	TagBest       = "베스트"
)

var seed = []Product{
	{
		ID:          "jelly-001",
		Name:        "하트베리 젤리",
		Flavor:      enums.FlavorStrawberry,
		Color:       enums.ColorPink,
		Description: "딸기의 달콤함이 가득한 하트 모양 젤리. Strawbi가 가장 좋아하는 맛이에요! 💕",
		Price:       4500,
		Sweetness:   5,
		Softness:    4,
		Shine:       5,
		InStock:     true,
		Tags:        []string{TagBestSeller, "하트모양", "달콤함"},
		Character:   "Strawbi",
	},
	{
		ID:          "jelly-002",
		Name:        "레몬 스파클",
		Flavor:      enums.FlavorLemon,
		Color:       enums.ColorYellow,
		Description: "상큼한 레몬향과 은은한 반짝임. 새콤달콤한 맛의 균형이 완벽해요! ✨",
		Price:       4000,
		Sweetness:   3,
		Softness:    3,
		Shine:       5,
		InStock:     true,
		Tags:        []string{"상큼함", "반짝이", "새콤달콤"},
		Character:   "Lemmi",
	},
	{
		ID:          "jelly-003",
		Name:        "민트 브리즈",
		Flavor:      enums.FlavorMint,
		Color:       enums.ColorMint,
		Description: "시원한 민트향이 입안 가득. 여름에 특히 인기가 많은 상쾌한 젤리예요! 🌿",
		Price:       4200,
		Sweetness:   2,
		Softness:    4,
		Shine:       4,
		InStock:     true,
		Tags:        []string{"시원함", "상쾌함", "여름한정"},
		Character:   "Minty",
	},
	{
		ID:          "jelly-004",
		Name:        "그레이프 드림",
		Flavor:      enums.FlavorGrape,
		Color:       enums.ColorLavender,
		Description: "포도의 풍부한 맛과 부드러운 식감. 달콤한 꿈을 꾸는 듯한 맛이에요! 🍇",
		Price:       4300,
		Sweetness:   4,
		Softness:    5,
		Shine:       3,
		InStock:     true,
		Tags:        []string{"부드러움", "풍미", "인기"},
		Character:   "Dr. Jellybear",
	},
	{
		ID:          "jelly-005",
		Name:        "피치 블러쉬",
		Flavor:      enums.FlavorPeach,
		Color:       enums.ColorPink,
		Description: "복숭아의 달콤함과 부끄러운 핑크빛. 사랑스러운 색감과 맛! 🍑",
		Price:       4400,
		Sweetness:   4,
		Softness:    5,
		Shine:       4,
		InStock:     true,
		Tags:        []string{"달콤함", "부드러움", "예쁨"},
	},
	{
		ID:          "jelly-006",
		Name:        "애플 프레시",
		Flavor:      enums.FlavorApple,
		Color:       enums.ColorMint,
		Description: "청사과의 상큼함을 그대로 담았어요. 깔끔한 맛과 식감! 🍏",
		Price:       3900,
		Sweetness:   3,
		Softness:    3,
		Shine:       3,
		InStock:     true,
		Tags:        []string{"상큼함", "깔끔함", "가성비"},
	},
	{
		ID:          "jelly-007",
		Name:        "오렌지 선샤인",
		Flavor:      enums.FlavorOrange,
		Color:       enums.ColorOrange,
		Description: "햇살처럼 밝은 오렌지 젤리. 비타민 가득한 활력을 느껴보세요! 🌞",
		Price:       4100,
		Sweetness:   4,
		Softness:    4,
		Shine:       5,
		InStock:     true,
		Tags:        []string{"활력", "비타민", "밝음"},
	},
	{
		ID:          "jelly-008",
		Name:        "무지개 믹스 팩",
		Flavor:      enums.FlavorStrawberry,
		Color:       enums.ColorPink,
		Description: "7가지 맛이 모두 들어있는 스페셜 팩! 매일 다른 맛을 즐겨보세요 🌈",
		Price:       12000,
		Sweetness:   4,
		Softness:    4,
		Shine:       5,
		InStock:     true,
		Tags:        []string{"세트", "다양함", "선물추천", TagBest},
	},
}
