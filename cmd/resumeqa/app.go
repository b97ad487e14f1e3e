package main

import (
	"resumeqa/internal/chunker"
	"resumeqa/internal/config"
	"resumeqa/internal/embedding/tfidf"
	"resumeqa/internal/llm"
	"resumeqa/internal/logger"
	"resumeqa/internal/metrics"
	"resumeqa/internal/service"
	"resumeqa/internal/summarizer"
	"resumeqa/internal/vectorstore/memory"
)

const overviewSentences = 3

// buildService assembles and indexes the RAG service. withLLM connects the
// completion client and fails when the API key is missing.
func buildService(cfg *config.AppConfig, m *metrics.Metrics, withLLM bool) (*service.RAGService, *llm.Client, error) {
	ch, err := chunker.New(chunker.Settings{
		Type:              cfg.Chunker.Type,
		Size:              cfg.Chunker.Size,
		Overlap:           cfg.Chunker.Overlap,
		SentencesPerChunk: cfg.Chunker.SentencesPerChunk,
		OverlapSentences:  cfg.Chunker.OverlapSentences,
	})
	if err != nil {
		return nil, nil, err
	}
	var embedderOpts []tfidf.Option
	if cfg.Retriever.Stopwords {
		embedderOpts = append(embedderOpts, tfidf.WithStopwords())
	}
	opts := []service.Option{
		service.WithLogger(logger.GetDefault().With("component", "rag")),
		service.WithTopK(cfg.Retriever.TopK),
		service.WithSummarizer(summarizer.NewFrequencySummarizer(), overviewSentences),
		service.WithAnswerCache(cfg.Cache.Size),
		service.WithMetrics(m),
	}
	var client *llm.Client
	if withLLM {
		key, err := cfg.APIKey()
		if err != nil {
			return nil, nil, err
		}
		client, err = llm.NewClient(llm.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      key,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout(),
			MaxRetries:  cfg.LLM.MaxRetries,
		})
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, service.WithCompleter(client))
	}
	svc, err := service.NewRAGService(ch, tfidf.NewEmbedder(embedderOpts...), memory.NewStorage(), opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := svc.Ingest(cfg.Document.Path); err != nil {
		return nil, nil, err
	}
	return svc, client, nil
}
