package nav

import "testing"

func TestBuildMarksActiveSection(t *testing.T) {
	items := Build(Main, "/shop/kurta-essential")
	var active []string
	for _, it := range items {
		if it.Active {
			active = append(active, it.Href)
		}
	}
	if len(active) != 1 || active[0] != "/shop" {
		t.Fatalf("expected only /shop active, got %v", active)
	}
}

func TestBuildNoFalsePrefixMatch(t *testing.T) {
	items := Build(Main, "/shopping-guide")
	for _, it := range items {
		if it.Active {
			t.Fatalf("no item should be active on /shopping-guide, got %s", it.Href)
		}
	}
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/shop/kurta-essential")
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 crumbs, got %v", crumbs)
	}
	if crumbs[0].Label != "Home" || crumbs[1].Label != "Shop" {
		t.Fatalf("unexpected labels %v", crumbs)
	}
	if crumbs[2].Label != "Kurta essential" || !crumbs[2].Active {
		t.Fatalf("unexpected leaf crumb %+v", crumbs[2])
	}
}

func TestBreadcrumbsHomeOnly(t *testing.T) {
	crumbs := Breadcrumbs("/")
	if len(crumbs) != 1 || !crumbs[0].Active {
		t.Fatalf("expected single active home crumb, got %v", crumbs)
	}
}
