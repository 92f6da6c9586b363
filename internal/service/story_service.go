// Package service 把编排器和存储组装成面向HTTP层的故事服务
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"storyweaver/internal/agent"
	"storyweaver/internal/model"
	"storyweaver/internal/parentcfg"
	"storyweaver/internal/store"
)

// GenerateRequest 一次故事生成请求。指针字段为nil表示使用默认值。
type GenerateRequest struct {
	UserRequest            string              `json:"user_request" binding:"required"`
	EnableFacts            *bool               `json:"enable_facts,omitempty"`
	MaxRevisions           *int                `json:"max_revisions,omitempty"`
	QualityThreshold       *float64            `json:"quality_threshold,omitempty"`
	StorytellerTemperature *float32            `json:"storyteller_temperature,omitempty"`
	JudgeTemperature       *float32            `json:"judge_temperature,omitempty"`
	MaxStoryTokens         *int                `json:"max_story_tokens,omitempty"`
	Parent                 *parentcfg.Settings `json:"parent,omitempty"`
}

// StoryService 故事生成服务。每次请求按参数装配一个编排器，
// 生成结果和运行流水尽力落库，存储失败只记日志不影响返回。
type StoryService struct {
	store *store.Store
	log   *logrus.Entry
}

// NewStoryService 创建故事服务。store可为nil，此时跳过持久化。
func NewStoryService(st *store.Store) *StoryService {
	return &StoryService{
		store: st,
		log:   logrus.WithField("service", "story"),
	}
}

// buildOptions 把请求的覆盖项套在默认配置上
func buildOptions(req GenerateRequest) agent.Options {
	opts := agent.DefaultOptions()
	if req.EnableFacts != nil {
		opts.EnableFacts = *req.EnableFacts
	}
	if req.MaxRevisions != nil && *req.MaxRevisions > 0 {
		opts.MaxRevisions = *req.MaxRevisions
	}
	if req.QualityThreshold != nil && *req.QualityThreshold > 0 {
		opts.QualityThreshold = *req.QualityThreshold
	}
	if req.StorytellerTemperature != nil {
		opts.StorytellerTemperature = *req.StorytellerTemperature
	}
	if req.JudgeTemperature != nil {
		opts.JudgeTemperature = *req.JudgeTemperature
	}
	if req.MaxStoryTokens != nil && *req.MaxStoryTokens > 0 {
		opts.MaxStoryTokens = *req.MaxStoryTokens
	}
	if req.Parent != nil {
		opts.Parent = req.Parent
	}
	return opts
}

// Generate 处理一次完整的故事生成请求
func (s *StoryService) Generate(ctx context.Context, req GenerateRequest) model.GenerationResult {
	opts := buildOptions(req)
	orchestrator := agent.New(ctx, opts)

	start := time.Now()
	result := orchestrator.GenerateStory(ctx, req.UserRequest)
	elapsed := time.Since(start)

	s.persist(ctx, result, opts, elapsed)
	return result
}

func (s *StoryService) persist(ctx context.Context, res model.GenerationResult, opts agent.Options, elapsed time.Duration) {
	if s.store == nil {
		return
	}

	settings := model.RunSettings{
		StorytellerTemperature: float64(opts.StorytellerTemperature),
		JudgeTemperature:       float64(opts.JudgeTemperature),
		MaxStoryTokens:         opts.MaxStoryTokens,
		QualityThreshold:       opts.QualityThreshold,
		MaxRevisions:           opts.MaxRevisions,
	}

	if res.Err == "" {
		if _, err := s.store.SaveStory(ctx, res, settings); err != nil {
			s.log.WithError(err).Warn("failed to save story")
		}
	}

	run := model.RunRecord{
		Timestamp:    time.Now(),
		UserRequest:  res.UserRequest,
		Success:      res.Err == "",
		ModelUsed:    res.ModelUsed,
		ErrorMessage: res.Err,
		Duration:     elapsed,
		MCPEnabled:   res.MCPEnabled,
		FallbackUsed: res.FallbackUsed,
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		s.log.WithError(err).Warn("failed to save run record")
	}
}

// Stories 最近的故事列表
func (s *StoryService) Stories(ctx context.Context, limit int) ([]store.StoredStory, error) {
	return s.store.Stories(ctx, limit)
}

// StoryByID 按ID取单条故事
func (s *StoryService) StoryByID(ctx context.Context, id int64) (store.StoredStory, error) {
	return s.store.StoryByID(ctx, id)
}

// DeleteStory 删除一条故事
func (s *StoryService) DeleteStory(ctx context.Context, id int64) error {
	return s.store.DeleteStory(ctx, id)
}

// Stats 汇总统计
func (s *StoryService) Stats(ctx context.Context) (store.Statistics, error) {
	return s.store.Stats(ctx)
}

// HasStore 是否启用了持久化
func (s *StoryService) HasStore() bool {
	return s.store != nil
}
