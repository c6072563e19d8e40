package service

import "context"

type testTxRepos struct {
	conversations ConversationRepositoryInterface
	alerts        AlertRepositoryInterface
}

func (t *testTxRepos) Conversations() ConversationRepositoryInterface {
	return t.conversations
}

func (t *testTxRepos) Alerts() AlertRepositoryInterface {
	return t.alerts
}

type testTxRunner struct {
	repos  TxRepositories
	err    error
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
