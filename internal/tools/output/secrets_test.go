package output

import "testing"

func secretObject() map[string]any {
	return map[string]any{
		"kind":       "Secret",
		"apiVersion": "v1",
		"type":       "kubernetes.io/service-account-token",
		"metadata": map[string]any{
			"name": "token",
			"annotations": map[string]any{
				"kubernetes.io/service-account.name": "builder",
				"team":                               "platform",
			},
		},
		"data":       map[string]any{"token": "c2VjcmV0"},
		"stringData": map[string]any{"password": "hunter2"},
	}
}

func TestMaskSecrets(t *testing.T) {
	masked := MaskSecrets(secretObject())

	if got := masked["data"].(map[string]any)["token"]; got != RedactedValue {
		t.Errorf("data.token = %v, want %s", got, RedactedValue)
	}
	if got := masked["stringData"].(map[string]any)["password"]; got != RedactedValue {
		t.Errorf("stringData.password = %v, want %s", got, RedactedValue)
	}
	if masked["type"] != "kubernetes.io/service-account-token" {
		t.Errorf("type = %v, should stay visible", masked["type"])
	}

	annotations := masked["metadata"].(map[string]any)["annotations"].(map[string]any)
	if annotations["kubernetes.io/service-account.name"] != RedactedValue {
		t.Error("service account annotation was not masked")
	}
	if annotations["team"] != "platform" {
		t.Error("unrelated annotation was masked")
	}
}

func TestMaskSecrets_DeepCopy(t *testing.T) {
	original := secretObject()
	_ = MaskSecrets(original)

	if original["data"].(map[string]any)["token"] != "c2VjcmV0" {
		t.Error("MaskSecrets modified its input")
	}
}

func TestMaskSecrets_NonSecret(t *testing.T) {
	pod := map[string]any{
		"kind": "Pod",
		"data": map[string]any{"k": "v"},
	}
	if got := MaskSecrets(pod)["data"].(map[string]any)["k"]; got != "v" {
		t.Errorf("non-secret data = %v, want v", got)
	}
	if MaskSecrets(nil) != nil {
		t.Error("MaskSecrets(nil) should be nil")
	}
}

func TestMaskSecrets_List(t *testing.T) {
	list := map[string]any{
		"kind": "List",
		"items": []any{
			secretObject(),
			map[string]any{"kind": "ConfigMap", "data": map[string]any{"k": "v"}},
		},
	}

	if !ContainsSecrets(list) {
		t.Error("ContainsSecrets should find the secret item")
	}

	masked := MaskSecrets(list)
	items := masked["items"].([]any)
	if items[0].(map[string]any)["data"].(map[string]any)["token"] != RedactedValue {
		t.Error("secret item was not masked")
	}
	if items[1].(map[string]any)["data"].(map[string]any)["k"] != "v" {
		t.Error("config map item was masked")
	}
}

func TestIsSecretResource(t *testing.T) {
	tests := []struct {
		name string
		obj  map[string]any
		want bool
	}{
		{name: "nil", obj: nil, want: false},
		{name: "secret", obj: map[string]any{"kind": "Secret"}, want: true},
		{name: "lower case", obj: map[string]any{"kind": "secret"}, want: true},
		{name: "pod", obj: map[string]any{"kind": "Pod"}, want: false},
		{name: "no kind", obj: map[string]any{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSecretResource(tt.obj); got != tt.want {
				t.Errorf("IsSecretResource() = %v, want %v", got, tt.want)
			}
		})
	}
}
