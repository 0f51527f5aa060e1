package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tennisclub/league-system/models"
)

func makeMembers(n int) []models.Member {
	members := make([]models.Member, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, models.Member{
			ID:       fmt.Sprintf("member-%02d", i),
			FullName: fmt.Sprintf("Player %02d", i),
		})
	}
	return members
}

func TestDistributeGroupsRoundRobin(t *testing.T) {
	members := makeMembers(7)

	groups := DistributeGroups(members, 3)
	require.Len(t, groups, 3)

	assert.Len(t, groups[0], 3)
	assert.Len(t, groups[1], 2)
	assert.Len(t, groups[2], 2)

	// i-й игрок попадает в группу i mod 3.
	assert.Equal(t, "member-00", groups[0][0].ID)
	assert.Equal(t, "member-01", groups[1][0].ID)
	assert.Equal(t, "member-02", groups[2][0].ID)
	assert.Equal(t, "member-03", groups[0][1].ID)
	assert.Equal(t, "member-06", groups[0][2].ID)
}

func TestDistributeGroupsSizesDifferByAtMostOne(t *testing.T) {
	for _, total := range []int{4, 9, 16, 17, 31} {
		for _, count := range []int{1, 2, 3, 4, 5} {
			groups := DistributeGroups(makeMembers(total), count)

			min, max := total, 0
			seen := 0
			for _, g := range groups {
				seen += len(g)
				if len(g) < min {
					min = len(g)
				}
				if len(g) > max {
					max = len(g)
				}
			}
			assert.Equal(t, total, seen, "all members must be placed (%d in %d groups)", total, count)
			assert.LessOrEqual(t, max-min, 1, "group sizes must differ by at most 1 (%d in %d groups)", total, count)
		}
	}
}

func TestDistributeGroupsPreservesOrderWithinGroup(t *testing.T) {
	members := makeMembers(10)
	groups := DistributeGroups(members, 2)

	for _, g := range groups {
		for i := 1; i < len(g); i++ {
			assert.Less(t, g[i-1].ID, g[i].ID, "application order must be preserved inside a group")
		}
	}
}

func TestDistributeGroupsClampsCount(t *testing.T) {
	groups := DistributeGroups(makeMembers(5), 0)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 5)
}
