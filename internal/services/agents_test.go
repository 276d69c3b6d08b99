package services

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/agenthub/agenthub/internal/models"
	"github.com/agenthub/agenthub/internal/pagination"
)

func TestCreateAgent(t *testing.T) {
	db := testDB(t)
	svc := NewAgents(db, nil, testLogger())
	user := createUser(t, db, "owner@example.com")

	agent, err := svc.Create(testCtx, user.ID, CreateAgentInput{
		Name:         "Helper",
		SystemPrompt: "Be helpful.",
		LLMProvider:  "anthropic",
		LLMModel:     "claude-sonnet-4-20250514",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if agent.LLMTemperature != 0.7 || agent.LLMMaxTokens != 4096 {
		t.Errorf("defaults not applied: temp=%v maxTokens=%d", agent.LLMTemperature, agent.LLMMaxTokens)
	}

	// The knowledge base is created alongside the agent.
	var kb models.KnowledgeBase
	if err := db.Where("agent_id = ?", agent.ID).First(&kb).Error; err != nil {
		t.Errorf("knowledge base missing: %v", err)
	}
}

func TestCreateAgentMissingFields(t *testing.T) {
	db := testDB(t)
	svc := NewAgents(db, nil, testLogger())
	user := createUser(t, db, "owner@example.com")

	_, err := svc.Create(testCtx, user.ID, CreateAgentInput{Name: "No prompt"})
	assertCode(t, err, 400, "MISSING_FIELDS")
}

func TestGetAgentOwnershipOpacity(t *testing.T) {
	db := testDB(t)
	svc := NewAgents(db, nil, testLogger())
	owner := createUser(t, db, "owner@example.com")
	intruder := createUser(t, db, "intruder@example.com")
	agent := createAgent(t, db, owner.ID)

	_, foreignErr := svc.Get(testCtx, intruder.ID, agent.ID)
	_, missingErr := svc.Get(testCtx, intruder.ID, "no-such-agent")
	assertCode(t, foreignErr, 404, "AGENT_NOT_FOUND")
	assertCode(t, missingErr, 404, "AGENT_NOT_FOUND")
}

func TestListAgentsSearch(t *testing.T) {
	db := testDB(t)
	svc := NewAgents(db, nil, testLogger())
	user := createUser(t, db, "owner@example.com")

	for _, name := range []string{"Sales Assistant", "Support Agent", "Billing Helper"} {
		if _, err := svc.Create(testCtx, user.ID, CreateAgentInput{
			Name:         name,
			SystemPrompt: "x",
			LLMProvider:  "openai",
			LLMModel:     "gpt-4o",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page := pagination.Params{Page: 1, Limit: 20}
	agents, meta, err := svc.List(testCtx, user.ID, "support", page)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.Total != 1 || len(agents) != 1 || agents[0].Name != "Support Agent" {
		t.Errorf("search returned %d/%d", len(agents), meta.Total)
	}

	agents, meta, err = svc.List(testCtx, user.ID, "", page)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.Total != 3 || len(agents) != 3 {
		t.Errorf("unfiltered returned %d/%d", len(agents), meta.Total)
	}
}

func TestUpdateAgentPartial(t *testing.T) {
	db := testDB(t)
	svc := NewAgents(db, nil, testLogger())
	user := createUser(t, db, "owner@example.com")
	agent := createAgent(t, db, user.ID)

	name := "Renamed"
	public := true
	updated, err := svc.Update(testCtx, user.ID, agent.ID, UpdateAgentInput{Name: &name, IsPublic: &public})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" || !updated.IsPublic {
		t.Errorf("updated = %+v", updated)
	}
	if updated.SystemPrompt != agent.SystemPrompt {
		t.Errorf("untouched field changed: %q", updated.SystemPrompt)
	}
}

func TestDeleteAgentCascades(t *testing.T) {
	db := testDB(t)
	agents := NewAgents(db, nil, testLogger())
	conversations := NewConversations(db, nil, PlaceholderResponder{}, testLogger())
	user := createUser(t, db, "owner@example.com")

	agent, err := agents.Create(testCtx, user.ID, CreateAgentInput{
		Name:         "Doomed",
		SystemPrompt: "x",
		LLMProvider:  "openai",
		LLMModel:     "gpt-4o",
	})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	conv, err := conversations.Create(testCtx, user.ID, agent.ID, "")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	if _, err := conversations.Send(testCtx, user.ID, conv.ID, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := agents.Delete(testCtx, user.ID, agent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := messageRows(t, db, conv.ID); got != 0 {
		t.Errorf("%d messages survived agent deletion", got)
	}
	var convCount int64
	db.Model(&models.Conversation{}).Where("agent_id = ?", agent.ID).Count(&convCount)
	if convCount != 0 {
		t.Errorf("%d conversations survived agent deletion", convCount)
	}
	var kbCount int64
	db.Model(&models.KnowledgeBase{}).Where("agent_id = ?", agent.ID).Count(&kbCount)
	if kbCount != 0 {
		t.Errorf("knowledge base survived agent deletion")
	}

	_, err = agents.Get(testCtx, user.ID, agent.ID)
	assertCode(t, err, 404, "AGENT_NOT_FOUND")
	_, err = conversations.Get(testCtx, user.ID, conv.ID)
	assertCode(t, err, 404, "CONVERSATION_NOT_FOUND")
}

func TestShareTokenStable(t *testing.T) {
	db := testDB(t)
	svc := NewAgents(db, nil, testLogger())
	user := createUser(t, db, "owner@example.com")
	agent := createAgent(t, db, user.ID)

	first, err := svc.ShareToken(testCtx, user.ID, agent.ID)
	if err != nil {
		t.Fatalf("share token: %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(first.ShareToken) {
		t.Errorf("token format: %q", first.ShareToken)
	}
	if !strings.Contains(first.EmbedCode, first.ShareToken) {
		t.Errorf("embed code does not reference the token")
	}

	// Repeated requests reuse the generated token.
	second, err := svc.ShareToken(testCtx, user.ID, agent.ID)
	if err != nil {
		t.Fatalf("share token: %v", err)
	}
	if second.ShareToken != first.ShareToken {
		t.Errorf("token regenerated: %q vs %q", second.ShareToken, first.ShareToken)
	}
}

func TestShareTokensUnique(t *testing.T) {
	db := testDB(t)
	svc := NewAgents(db, nil, testLogger())
	user := createUser(t, db, "owner@example.com")

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		agent, err := svc.Create(testCtx, user.ID, CreateAgentInput{
			Name:         fmt.Sprintf("Agent %d", i),
			SystemPrompt: "x",
			LLMProvider:  "openai",
			LLMModel:     "gpt-4o",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		result, err := svc.ShareToken(testCtx, user.ID, agent.ID)
		if err != nil {
			t.Fatalf("share token: %v", err)
		}
		if seen[result.ShareToken] {
			t.Fatalf("duplicate share token")
		}
		seen[result.ShareToken] = true
	}
}
