// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"qna-console-go/internal/model"
	"qna-console-go/internal/repository"
	"qna-console-go/pkg/log"
)

// HistoryService 定义了问答历史集合的操作接口。
// 内存中的集合是本次会话的权威状态；每次变更后都会把完整快照写入持久化层，
// 写入失败只记录日志，不向调用方暴露。
type HistoryService interface {
	// Load 在启动时从持久化层恢复历史；数据缺失或损坏时得到空集合。
	Load(ctx context.Context)
	// Insert 把一条新的交互记录插入集合头部，超出容量时按规则淘汰。
	Insert(ctx context.Context, exchange model.Exchange)
	// Remove 按 id 删除一条记录，id 不存在时为 no-op。
	Remove(ctx context.Context, id string)
	// TogglePin 翻转一条记录的置顶标志，id 不存在时为 no-op。
	TogglePin(ctx context.Context, id string)
	// Clear 清空全部历史。
	Clear(ctx context.Context)
	// Search 返回按置顶/时间排序的子集，空查询返回全量。不改变存储顺序。
	Search(query string) []model.Exchange
}

type historyService struct {
	mu       sync.Mutex
	entries  []model.Exchange // 按插入顺序存储，最新的在前
	capacity int
	repo     repository.HistoryRepository
}

// NewHistoryService 创建一个新的 HistoryService 实例。
func NewHistoryService(repo repository.HistoryRepository, capacity int) HistoryService {
	if capacity <= 0 {
		capacity = 20
	}
	return &historyService{
		entries:  []model.Exchange{},
		capacity: capacity,
		repo:     repo,
	}
}

// Load 从持久化层恢复历史快照。
func (s *historyService) Load(ctx context.Context) {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		// 持久化数据缺失或损坏等价于"没有数据"，绝不作为启动错误
		log.Warnf("恢复历史记录失败，使用空集合: %v", err)
		loaded = []model.Exchange{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:0]
	seen := make(map[string]struct{}, len(loaded))
	for _, ex := range loaded {
		// 丢弃违反不变量的记录：空问题/答案、重复 id
		if ex.ID == "" || ex.Question == "" || ex.Answer == "" {
			continue
		}
		if _, dup := seen[ex.ID]; dup {
			continue
		}
		seen[ex.ID] = struct{}{}
		s.entries = append(s.entries, ex)
	}
	// 超出容量的旧数据按正常淘汰规则截断
	s.evictLocked(false)
	log.Infof("历史记录已恢复，共 %d 条", len(s.entries))
}

// Insert 把新记录插入头部并持久化。
func (s *historyService) Insert(ctx context.Context, exchange model.Exchange) {
	s.mu.Lock()
	s.entries = append([]model.Exchange{exchange}, s.entries...)
	s.evictLocked(true)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// Remove 按 id 删除，不存在时静默返回。
func (s *historyService) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	found := false
	for i, ex := range s.entries {
		if ex.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			found = true
			break
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if found {
		s.persist(ctx, snapshot)
	}
}

// TogglePin 翻转置顶标志，不存在时静默返回。
func (s *historyService) TogglePin(ctx context.Context, id string) {
	s.mu.Lock()
	found := false
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Pinned = !s.entries[i].Pinned
			found = true
			break
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if found {
		s.persist(ctx, snapshot)
	}
}

// Clear 清空集合并持久化。
func (s *historyService) Clear(ctx context.Context) {
	s.mu.Lock()
	s.entries = s.entries[:0]
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// Search 对问题与答案的拼接做大小写不敏感的子串匹配，
// 返回按"置顶在前、组内时间倒序"排序的副本，存储顺序保持不变。
func (s *historyService) Search(query string) []model.Exchange {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	results := make([]model.Exchange, 0, len(s.entries))
	for _, ex := range s.entries {
		if q == "" || strings.Contains(strings.ToLower(ex.Question+" "+ex.Answer), q) {
			results = append(results, ex)
		}
	}
	s.mu.Unlock()

	// 稳定排序保证同组内不改变既有相对顺序
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Pinned != results[j].Pinned {
			return results[i].Pinned
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results
}

// evictLocked 把集合裁剪到容量以内：优先淘汰最旧的未置顶记录，
// 候选全部置顶时淘汰最旧的置顶记录。时间戳相同时以插入顺序为准（最早插入者先淘汰）。
// protectNewest 为 true 时刚插入的头部记录不参与淘汰，否则新记录在旧记录
// 全部置顶时会被自己触发的淘汰立刻清掉。调用方必须持有 s.mu。
func (s *historyService) evictLocked(protectNewest bool) {
	for len(s.entries) > s.capacity {
		floor := 0
		if protectNewest {
			floor = 1
		}
		victim := -1
		for i := len(s.entries) - 1; i >= floor; i-- {
			if !s.entries[i].Pinned {
				victim = i
				break
			}
		}
		if victim < 0 {
			// 置顶只改变优先级，不授予无条件的豁免
			victim = len(s.entries) - 1
		}
		s.entries = append(s.entries[:victim], s.entries[victim+1:]...)
	}
}

// snapshotLocked 返回当前集合的副本。调用方必须持有 s.mu。
func (s *historyService) snapshotLocked() []model.Exchange {
	snapshot := make([]model.Exchange, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot
}

// persist 把快照写入持久化层。失败只记录日志：内存状态在本会话内仍然权威。
func (s *historyService) persist(ctx context.Context, snapshot []model.Exchange) {
	if err := s.repo.Save(ctx, snapshot); err != nil {
		log.Warnf("持久化历史记录失败: %v", err)
	}
}
