package k8s

import "strings"

// clusterScoped holds the built-in kinds that live outside any namespace,
// by plural, singular and short name.
var clusterScoped = map[string]bool{
	"nodes": true, "node": true, "no": true,
	"persistentvolumes": true, "persistentvolume": true, "pv": true,
	"namespaces": true, "namespace": true, "ns": true,
	"componentstatuses": true, "componentstatus": true, "cs": true,
	"clusterroles": true, "clusterrole": true,
	"clusterrolebindings": true, "clusterrolebinding": true,
	"storageclasses": true, "storageclass": true, "sc": true,
	"volumeattachments": true, "volumeattachment": true,
	"csidrivers": true, "csidriver": true,
	"csinodes": true, "csinode": true,
	"csistoragecapacities": true, "csistoragecapacity": true,
	"ingressclasses": true, "ingressclass": true,
	"priorityclasses": true, "priorityclass": true, "pc": true,
	"runtimeclasses": true, "runtimeclass": true,
	"podsecuritypolicies": true, "podsecuritypolicy": true, "psp": true,
	"mutatingwebhookconfigurations": true, "mutatingwebhookconfiguration": true,
	"validatingwebhookconfigurations": true, "validatingwebhookconfiguration": true,
	"customresourcedefinitions": true, "customresourcedefinition": true, "crd": true, "crds": true,
	"apiservices": true, "apiservice": true,
	"certificatesigningrequests": true, "certificatesigningrequest": true, "csr": true,
}

// IsClusterScoped reports whether resourceType names a cluster-scoped kind.
// Matching ignores case.
func IsClusterScoped(resourceType string) bool {
	return clusterScoped[strings.ToLower(resourceType)]
}
