package images

import (
	"fmt"

	"github.com/calyx/image-service/database/models"
	"github.com/calyx/image-service/database/repo/tags"
	"github.com/calyx/image-service/internal/apperrors"
)

// TagValidator 标签引用校验器
// 保证图片写入时引用的每个标签都真实存在，
// 校验失败时报告完整的缺失 ID 集合而不是第一个
type TagValidator struct {
	repo *tags.Repository
}

// NewTagValidator 创建新的标签引用校验器
func NewTagValidator(repo *tags.Repository) *TagValidator {
	return &TagValidator{repo: repo}
}

// Resolve 将请求的标签 ID 集合解析为标签实体
// 重复的请求 ID 会被折叠；任何一个 ID 无法解析则整体失败，
// 返回携带全部缺失 ID 的 TagNotFoundError
func (v *TagValidator) Resolve(requestedIDs []uint) ([]*models.Tag, error) {
	unique := dedupeIDs(requestedIDs)
	if len(unique) == 0 {
		return []*models.Tag{}, nil
	}

	resolved, err := v.repo.FindByIDs(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}

	if len(resolved) != len(unique) {
		found := make(map[uint]struct{}, len(resolved))
		for _, tag := range resolved {
			found[tag.ID] = struct{}{}
		}

		var missing []uint
		for _, id := range unique {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, apperrors.NewTagNotFoundError(missing)
	}

	return resolved, nil
}

// dedupeIDs 折叠重复 ID，保留首次出现的顺序
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
