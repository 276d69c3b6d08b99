package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/models"
	"github.com/agenthub/agenthub/internal/pagination"
)

func createPlugin(t *testing.T, db *gorm.DB, name, category string, enabled bool) models.Plugin {
	t.Helper()
	plugin := models.Plugin{Name: name, Category: category, Version: "1.0.0", IsEnabled: enabled}
	if err := db.Create(&plugin).Error; err != nil {
		t.Fatalf("create plugin: %v", err)
	}
	return plugin
}

func TestListPlugins(t *testing.T) {
	db := testDB(t)
	svc := NewPlugins(db, nil, testLogger())
	createPlugin(t, db, "web-search", "search", true)
	createPlugin(t, db, "calculator", "tools", true)
	disabled := models.Plugin{Name: "legacy", Category: "tools"}
	if err := db.Create(&disabled).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Model(&models.Plugin{}).Where("id = ?", disabled.ID).Update("is_enabled", false).Error; err != nil {
		t.Fatalf("disable: %v", err)
	}

	page := pagination.Params{Page: 1, Limit: 20}

	plugins, meta, err := svc.List(testCtx, "", page)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if meta.Total != 2 || len(plugins) != 2 {
		t.Errorf("disabled plugin leaked into listing: %d/%d", len(plugins), meta.Total)
	}

	plugins, meta, err = svc.List(testCtx, "tools", page)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if meta.Total != 1 || plugins[0].Name != "calculator" {
		t.Errorf("category filter: %+v", plugins)
	}
}

func TestGetPlugin(t *testing.T) {
	db := testDB(t)
	svc := NewPlugins(db, nil, testLogger())
	plugin := createPlugin(t, db, "web-search", "search", true)

	got, err := svc.Get(testCtx, plugin.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "web-search" {
		t.Errorf("plugin = %+v", got)
	}

	_, err = svc.Get(testCtx, "no-such-plugin")
	assertCode(t, err, 404, "PLUGIN_NOT_FOUND")
}
