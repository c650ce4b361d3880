package config

import "testing"

func TestDefaultMatchesPropertyTable(t *testing.T) {
	c := Default()
	for _, p := range Properties {
		got, err := c.Get(p.ID)
		if err != nil {
			t.Fatalf("Get(%q): %v", p.ID, err)
		}
		if got != p.Default {
			t.Errorf("property %q: Default() gives %q, table says %q", p.ID, got, p.Default)
		}
	}
}

func TestSetBoolValidatesValue(t *testing.T) {
	c := Default()
	if err := c.Set("showDataFlow", "false"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ShowDataFlow {
		t.Error("expected ShowDataFlow to be false")
	}
	if err := c.Set("showDataFlow", "maybe"); err == nil {
		t.Error("expected an error for a non-bool value")
	}
}

func TestSetChoiceValidatesEnum(t *testing.T) {
	c := Default()
	if err := c.Set("x86.formatter", "nasm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.X86Formatter != X86Nasm {
		t.Errorf("got %v", c.X86Formatter)
	}
	if err := c.Set("x86.formatter", "att"); err == nil {
		t.Error("expected an error for a value outside the enum")
	}
}

func TestSetUnknownProperty(t *testing.T) {
	c := Default()
	if err := c.Set("does.not.exist", "true"); err == nil {
		t.Error("expected an error for an unknown property id")
	}
}

func TestGetUnknownProperty(t *testing.T) {
	c := Default()
	if _, err := c.Get("does.not.exist"); err == nil {
		t.Error("expected an error for an unknown property id")
	}
}

func TestSeparatorHonoursSpaceBetweenArgs(t *testing.T) {
	c := Default()
	c.SpaceBetweenArgs = true
	if c.Separator() != ", " {
		t.Errorf("got %q", c.Separator())
	}
	c.SpaceBetweenArgs = false
	if c.Separator() != "," {
		t.Errorf("got %q", c.Separator())
	}
}

func TestSchemaCoversAllProperties(t *testing.T) {
	s := Schema()
	if s == nil {
		t.Fatal("expected a non-nil schema")
	}
	if s.Properties == nil || s.Properties.Len() != len(Properties) {
		t.Errorf("expected schema to describe all %d properties, got %v", len(Properties), s.Properties)
	}
}
