package database

import "testing"

// Sans keyspace utilisateurs configuré, les constructeurs de requêtes
// panier doivent échouer proprement au lieu de rendre un Query partagé.
func TestCartQueriesRequireConfiguredKeyspace(t *testing.T) {
	t.Setenv("SCYLLA_KS_USERS_KEYSPACE", "")

	if _, err := ListCartLinesQuery(); err == nil {
		t.Fatal("ListCartLinesQuery devrait échouer sans keyspace configuré")
	}
	if _, err := GetCartLineQuery(); err == nil {
		t.Fatal("GetCartLineQuery devrait échouer sans keyspace configuré")
	}
	if _, err := UpdateCartLineQuery(); err == nil {
		t.Fatal("UpdateCartLineQuery devrait échouer sans keyspace configuré")
	}
	if _, err := DeleteCartLineQuery(); err == nil {
		t.Fatal("DeleteCartLineQuery devrait échouer sans keyspace configuré")
	}
}
