// Package pipeline wires the Source Fetchers, Stratified Sampler, LLM
// Evaluator, Scorer, Deduplicator, Diversity Selector, Renderer, and
// Metrics Collector into the end-to-end daily digest run described by
// spec.md §2 and §5.
package pipeline

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"catchup-feed/internal/config"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/fetch"
	"catchup-feed/internal/infra/githubclient"
	"catchup-feed/internal/infra/evaluator"
	"catchup-feed/internal/usecase/ingest"
	"catchup-feed/internal/usecase/metricsout"
	"catchup-feed/internal/usecase/render"
	"catchup-feed/internal/usecase/selection"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one pipeline run, surfaced to the driver's
// caller for logging and metrics.
type Result struct {
	SourcesProcessed int
	CandidatesFound  int
	FinalSlateSize   int
	MarkdownPath     string
	Distribution     map[string]int
}

// Driver owns every stage's dependencies for one run. FetchConcurrency
// bounds optional parallel per-source fetching (spec.md §5); 1 means
// sequential.
type Driver struct {
	Registry         *entity.Registry
	Env              config.Env
	FetchConcurrency int
	RNG              *rand.Rand
	Now              func() time.Time
}

// fetcherFor dispatches a SourceConfig to its fetcher, grounded on
// spec.md §4.1's per-source-kind dialects.
func fetcherFor(kind entity.SourceKind, deps *fetcherDeps) fetch.Fetcher {
	switch kind {
	case entity.KindRSS, entity.KindAtom, entity.KindCuratedRSS, entity.KindRSSHub:
		return deps.rss
	case entity.KindLink:
		return deps.web
	case entity.KindCode:
		return deps.code
	case entity.KindGithubMDFolder:
		return deps.mdFolder
	case entity.KindGithubJSON:
		return deps.ghJSON
	default:
		return nil
	}
}

type fetcherDeps struct {
	rss      *fetch.RSSFetcher
	web      *fetch.WebPageFetcher
	code     *fetch.CodeReadmeFetcher
	mdFolder *fetch.GithubMDFolderFetcher
	ghJSON   *fetch.GithubJSONFetcher
	telegram *fetch.TelegramTransformer
}

func newFetcherDeps(env config.Env) *fetcherDeps {
	cache, err := githubclient.NewFileCache(".cache/github")
	if err != nil {
		slog.Warn("github etag cache directory unavailable, falling back to the system temp dir", slog.Any("error", err))
		cache, err = githubclient.NewFileCache(filepath.Join(os.TempDir(), "catchup-feed-github-cache"))
		if err != nil {
			slog.Error("github etag cache completely unavailable", slog.Any("error", err))
		}
	}
	gh := githubclient.New(env.GitHubToken, cache)

	focus := config.DefaultFocusKeywords
	nofocus := config.DefaultNoFocusKeywords

	return &fetcherDeps{
		rss:      fetch.NewRSSFetcher(focus, nofocus),
		web:      fetch.NewWebPageFetcher(),
		code:     fetch.NewCodeReadmeFetcher(gh),
		mdFolder: fetch.NewGithubMDFolderFetcher(gh),
		ghJSON:   fetch.NewGithubJSONFetcher(),
		telegram: fetch.NewTelegramTransformer(gh),
	}
}

// Run executes one complete pipeline pass: fetch, sample, evaluate, score,
// dedup, select, render, and emit metrics.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if d.RNG == nil {
		d.RNG = rand.New(rand.NewSource(1))
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	sources := d.Registry.Sources()
	metrics := metricsout.Init(sources)
	deps := newFetcherDeps(d.Env)

	candidates, err := d.fetchAll(ctx, sources, deps, metrics)
	if err != nil {
		return Result{}, err
	}

	sampled := ingest.Sample(candidates, metrics, d.RNG)

	evaluated := d.evaluate(ctx, sampled)

	globalCfg := d.Registry.Configuration
	dailyTarget := globalCfg.DailyTarget
	if d.Env.MaxArticleNums > 0 {
		dailyTarget = d.Env.MaxArticleNums
	}

	survivors := d.scoreAndDrop(evaluated, now(), globalCfg)
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Evaluate.Score > survivors[j].Evaluate.Score
	})

	deduped := selection.Dedup(survivors)
	result := selection.Select(deduped, globalCfg.Selection.DiversityQuotas, dailyTarget)

	for rank, a := range result.Slate {
		metricsout.RecordRelease(metrics, a.SourceName, a.Evaluate.Score, rank+1)
	}

	markdown := render.Render(result.Slate, now())
	path := render.FilePath(d.Env.BlogRoot, now())
	if err := writeFile(path, markdown); err != nil {
		return Result{}, err
	}

	if err := metricsout.Write("src/data/metrics.json", metrics, now()); err != nil {
		slog.Warn("failed to write metrics output", slog.Any("error", err))
	}

	return Result{
		SourcesProcessed: len(sources),
		CandidatesFound:  len(candidates),
		FinalSlateSize:   len(result.Slate),
		MarkdownPath:     path,
		Distribution:     result.Distribution,
	}, nil
}

// fetchAll runs every source's fetcher, applies the Telegram-origin
// transform, normalizes the result, and records find_count. Sequential by
// default; parallelized across at most FetchConcurrency sources when set
// above 1, per spec.md §5.
func (d *Driver) fetchAll(ctx context.Context, sources []entity.SourceConfig, deps *fetcherDeps, metrics map[string]*entity.FeedMetric) ([]entity.Article, error) {
	results := make([][]entity.Article, len(sources))

	concurrency := d.FetchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			f := fetcherFor(src.Type, deps)
			if f == nil {
				slog.Warn("no fetcher for source kind", slog.String("source", src.Title), slog.String("kind", string(src.Type)))
				return nil
			}

			articles, err := f.Fetch(gctx, src)
			if err != nil {
				slog.Warn("source fetch failed", slog.String("source", src.Title), slog.Any("error", err))
				articles = nil
			}

			for j := range articles {
				if fetch.IsTelegramOrigin(articles[j]) {
					articles[j] = deps.telegram.Transform(gctx, articles[j])
				}
			}

			survivors := ingest.Normalize(articles)
			if m := metrics[src.Title]; m != nil {
				m.FindCount = len(survivors)
			}
			results[i] = survivors
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []entity.Article
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// evaluate groups candidates by source title and submits each group to the
// paced LLM Evaluator, attaching each returned Evaluation back to its
// matching Article by link (spec.md §4.5).
func (d *Driver) evaluate(ctx context.Context, candidates []entity.Article) []entity.Article {
	eval, err := evaluator.NewEvaluator(d.Env.AIProvider, d.Env.LLMAPIKey, d.Env.LLMModel, d.Env.SummaryLanguage)
	if err != nil {
		slog.Error("failed to construct llm evaluator", slog.Any("error", err))
		return nil
	}
	paced := evaluator.NewPacedEvaluator(eval, 2.0)

	byGroup := make(map[string][]entity.Article)
	var order []string
	for _, a := range candidates {
		if _, seen := byGroup[a.SourceName]; !seen {
			order = append(order, a.SourceName)
		}
		byGroup[a.SourceName] = append(byGroup[a.SourceName], a)
	}

	var out []entity.Article
	for _, sourceTitle := range order {
		group := byGroup[sourceTitle]
		evals, err := paced.Evaluate(ctx, sourceTitle, group)
		if err != nil {
			slog.Warn("evaluation group failed", slog.String("source", sourceTitle), slog.Any("error", err))
			continue
		}
		byLink := make(map[string]*entity.Evaluation, len(evals))
		for i := range evals {
			byLink[evals[i].Link] = &evals[i]
		}
		for _, a := range group {
			if e, ok := byLink[a.Link]; ok {
				a.Evaluate = e
				out = append(out, a)
			}
		}
	}
	return out
}

// scoreAndDrop scores every evaluated Article (spec.md §4.6) and applies
// the hard drop_if rules, logging a QualityDrop for each rejection.
func (d *Driver) scoreAndDrop(articles []entity.Article, now time.Time, globalCfg entity.GlobalConfig) []entity.Article {
	dropRules := globalCfg.Selection.LLMTagging.DropIf
	recencyCfg := globalCfg.Selection.Scoring.Recency
	penalties := globalCfg.Selection.Scoring.Penalties

	var survivors []entity.Article
	for i := range articles {
		a := articles[i]
		if a.Evaluate == nil {
			continue
		}
		selection.Score(&a, now, recencyCfg, penalties)

		if reason, drop := selection.ShouldDrop(a.Evaluate, dropRules); drop {
			slog.Info("quality drop", slog.String("title", a.Evaluate.Title), slog.String("reason", string(reason)))
			continue
		}
		survivors = append(survivors, a)
	}
	return survivors
}
