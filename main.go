package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storyweaver/internal/config"
	"storyweaver/internal/service"
	"storyweaver/internal/store"
)

func main() {
	// 初始化日志
	config.InitLogger()

	// 初始化存储，失败时降级为无持久化模式继续服务
	var st *store.Store
	st, err := store.Open(config.DBPath())
	if err != nil {
		logrus.WithError(err).Warn("存储初始化失败，本次运行不持久化")
		st = nil
	} else {
		defer st.Close()
	}

	storyService := service.NewStoryService(st)

	// 初始化Gin路由
	router := gin.Default()

	// 添加路由
	router.POST("/story/generate", handleGenerate(storyService))
	router.GET("/stories", handleListStories(storyService))
	router.GET("/stories/:id", handleGetStory(storyService))
	router.DELETE("/stories/:id", handleDeleteStory(storyService))
	router.GET("/stats", handleStats(storyService))

	// 启动服务器
	srv := &http.Server{
		Addr:    config.ListenAddr(),
		Handler: router,
	}

	// 在goroutine中启动服务器
	go func() {
		log.Printf("服务器启动在 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务器失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("关闭服务器...")

	// 优雅关闭服务器
	if err := srv.Close(); err != nil {
		log.Fatalf("服务器关闭失败: %v", err)
	}

	log.Println("服务器已关闭")
}

// handleGenerate 处理故事生成请求
func handleGenerate(storyService *service.StoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求格式"})
			return
		}

		result := storyService.Generate(c.Request.Context(), req)
		if result.Err != "" {
			// 生成彻底失败（主模型和兜底都不可用）
			c.JSON(http.StatusInternalServerError, result)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleListStories 处理故事列表请求
func handleListStories(storyService *service.StoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !storyService.HasStore() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储未启用"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		stories, err := storyService.Stories(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("查询故事失败: %v", err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"stories": stories, "count": len(stories)})
	}
}

// handleGetStory 处理单条故事查询
func handleGetStory(storyService *service.StoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !storyService.HasStore() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储未启用"})
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的故事ID"})
			return
		}

		story, err := storyService.StoryByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "故事不存在"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("查询故事失败: %v", err)})
			return
		}

		c.JSON(http.StatusOK, story)
	}
}

// handleDeleteStory 处理故事删除
func handleDeleteStory(storyService *service.StoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !storyService.HasStore() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储未启用"})
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的故事ID"})
			return
		}

		if err := storyService.DeleteStory(c.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "故事不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("删除故事失败: %v", err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

// handleStats 处理统计请求
func handleStats(storyService *service.StoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !storyService.HasStore() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "存储未启用"})
			return
		}

		stats, err := storyService.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("查询统计失败: %v", err)})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
