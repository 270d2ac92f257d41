package evaluator

import (
	"fmt"
	"strings"

	"catchup-feed/internal/domain/entity"
)

// systemPrompt is the fixed Korean prompt spec.md §4.5 names; it instructs
// the model to return a JSON array matching the per-item evaluation
// contract. SummaryLanguage lets the env var override the language hint
// without changing the field contract.
func systemPrompt(summaryLanguage string) string {
	return fmt.Sprintf(`당신은 AI 뉴스 큐레이터입니다. 아래 기사 목록을 검토하고, 각 기사에 대해 %s로 다음 필드를 채운 JSON 배열을 반환하세요:

- link: 입력과 동일한 원본 링크
- title: 간결한 제목
- tags: 관련 키워드 배열
- topic: 대표 주제 (예: Model, Agent, Tooling, Research, Product)
- impact: 영향도 (0-5)
- novelty: 새로움 정도 (0-5)
- proof: 근거/신뢰도 (0-5)
- summary: 2-3문장 요약
- why_it_matters: 왜 중요한가
- key_evidence: 핵심 근거
- who_should_care: 누가 관심을 가져야 하는가
- next_action: 다음 행동 제안
- comparison: 유사 사례와의 비교

JSON 배열만 반환하고 다른 텍스트는 포함하지 마세요.`, summaryLanguage)
}

// BatchItem is one delimited "link: ..., content: ..." triple submitted
// to the LLM for a single source group.
type BatchItem struct {
	Link    string
	Content string
}

// buildUserContent renders the newline-delimited item list spec.md §4.5
// describes as the request body.
func buildUserContent(items []BatchItem) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "link: %s, content: %s\n", it.Link, it.Content)
	}
	return b.String()
}

// itemsFromArticles builds the batch request items from a source group's
// surviving candidates, truncating content to a safe prompt size.
func itemsFromArticles(articles []entity.Article) []BatchItem {
	const maxContentChars = 2000
	items := make([]BatchItem, 0, len(articles))
	for _, a := range articles {
		content := a.Summary
		if len(content) > maxContentChars {
			content = content[:maxContentChars]
		}
		items = append(items, BatchItem{Link: a.Link, Content: content})
	}
	return items
}
