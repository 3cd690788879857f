package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/halcyonv/prompt-video-generator/internal/audio"
	"github.com/halcyonv/prompt-video-generator/internal/cache"
	"github.com/halcyonv/prompt-video-generator/internal/config"
	"github.com/halcyonv/prompt-video-generator/internal/jobs"
	"github.com/halcyonv/prompt-video-generator/internal/llm"
	"github.com/halcyonv/prompt-video-generator/internal/media"
	"github.com/halcyonv/prompt-video-generator/internal/persistence"
	"github.com/halcyonv/prompt-video-generator/internal/pipeline"
	"github.com/halcyonv/prompt-video-generator/internal/render"
	"github.com/halcyonv/prompt-video-generator/internal/script"
	"github.com/halcyonv/prompt-video-generator/internal/style"
	"github.com/halcyonv/prompt-video-generator/internal/timeline"
	"github.com/halcyonv/prompt-video-generator/pkg/icron"
	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

func main() {
	var (
		prompt     = flag.String("prompt", "", "generate a video for this prompt and exit")
		runID      = flag.String("run", "", "reuse the workspace of a previous run (retry)")
		preset     = flag.String("style", "", "style preset name (overrides STYLE_PRESET)")
		daemonMode = flag.Bool("daemon", false, "run as a daemon processing queued jobs")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	if *preset != "" {
		cfg.Pipeline.StylePreset = *preset
	}

	switch {
	case *daemonMode:
		if err := runDaemon(cfg); err != nil {
			log.Fatal("Daemon failed: %v", err)
		}
	case *prompt != "":
		if err := runOnce(cfg, *prompt, *runID); err != nil {
			log.Fatal("Generation failed: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runOnce(cfg *config.Config, prompt, runID string) error {
	p, _, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := p.Generate(context.Background(), prompt, runID)
	if err != nil {
		if stage, ok := pipeline.FailedStage(err); ok {
			log.Error("Stage %s failed, workspace kept for retry", stage)
		}
		return err
	}

	fmt.Println(result.VideoPath)
	return nil
}

func runDaemon(cfg *config.Config) error {
	p, cacheStore, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	store, err := persistence.NewSQLiteStore(cfg.Daemon.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open job store: %w", err)
	}
	defer store.Close()

	queue := jobs.NewQueue(cfg.Daemon.WorkerCount, store)
	queue.Start(func(ctx context.Context, job *jobs.GenerationJob) (*jobs.JobResult, error) {
		result, err := p.Generate(ctx, job.Payload.Prompt, job.Payload.RunID)
		if err != nil {
			return nil, err
		}

		record := persistence.RunRecord{
			RunID:       result.RunID,
			Prompt:      job.Payload.Prompt,
			StylePreset: job.Payload.StylePreset,
			VideoPath:   result.VideoPath,
			Duration:    result.Duration,
			ActCount:    result.ActCount,
			Workspace:   result.Workspace,
		}
		if err := store.RecordRun(ctx, record); err != nil {
			log.Error("Failed to record run history for job %s: %v", job.ID, err)
		}

		return &jobs.JobResult{
			VideoPath: result.VideoPath,
			Duration:  result.Duration,
			ActCount:  result.ActCount,
			Workspace: result.Workspace,
		}, nil
	})
	defer queue.Stop()

	c := cron.New(cron.WithSeconds())
	maxAge := time.Duration(cfg.Daemon.CacheMaxAgeDays) * 24 * time.Hour
	_, err = c.AddFunc(cfg.Daemon.JanitorCronExpr, func() {
		pruned, err := cacheStore.Prune(maxAge)
		if err != nil {
			log.Error("Cache prune failed: %v", err)
			return
		}
		log.Info("Cache janitor pruned %d entries", pruned)
	})
	if err != nil {
		return fmt.Errorf("invalid janitor cron expression %q: %w", cfg.Daemon.JanitorCronExpr, err)
	}
	c.Start()
	defer c.Stop()

	if info, err := icron.GetTriggerInfo(cfg.Daemon.JanitorCronExpr, time.Now()); err == nil {
		log.Info("Cache janitor scheduled, next run in %s", info.TimeUntilNext.Round(time.Second))
	}

	log.Info("Daemon running with %d worker(s)", cfg.Daemon.WorkerCount)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down")
	return nil
}

func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, *cache.Store, error) {
	styleCfg, err := style.LoadPreset(cfg.Pipeline.StylesDir, cfg.Pipeline.StylePreset)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load style preset: %w", err)
	}

	llmClient, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	generator := script.NewLLMGenerator(llmClient)

	ffmpeg, err := media.NewFFmpeg(cfg.Pipeline.VideoQuality)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up ffmpeg: %w", err)
	}

	provider, err := audio.NewProvider(cfg.TTS.Provider, audio.ProviderConfig{
		APIKey:  cfg.TTS.APIKey,
		APIURL:  cfg.TTS.APIURL,
		Model:   cfg.TTS.Model,
		Timeout: cfg.TTS.Timeout,
	}, ffmpeg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create TTS provider: %w", err)
	}

	cacheStore, err := cache.NewStore(cfg.Pipeline.CacheDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open synthesis cache: %w", err)
	}

	synth := audio.NewSynthesizer(provider, cacheStore, styleCfg)
	calculator := timeline.NewCalculator(timeline.DefaultLeadTime)
	engine := render.NewCommandEngine(cfg.Pipeline.RendererCmd, 0)

	p := pipeline.New(generator, synth, calculator, engine, ffmpeg, styleCfg, cfg.Pipeline.WorkspaceDir)
	return p, cacheStore, nil
}
