package brackets

import "github.com/tennisclub/league-system/models"

// DistributeGroups раскладывает игроков по count группам по кругу:
// i-й игрок попадает в группу i mod count. Порядок внутри группы
// повторяет порядок подачи заявок, никакой случайности.
// Размеры групп отличаются не более чем на 1.
func DistributeGroups(members []models.Member, count int) [][]models.Member {
	if count < 1 {
		count = 1
	}

	groups := make([][]models.Member, count)
	for i := range groups {
		groups[i] = make([]models.Member, 0, (len(members)+count-1)/count)
	}

	for idx, member := range members {
		groups[idx%count] = append(groups[idx%count], member)
	}

	return groups
}
