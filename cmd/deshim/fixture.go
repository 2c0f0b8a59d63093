package main

import (
	"context"

	"github.com/jianglei12138/deshim"
	"github.com/jianglei12138/deshim/internal/config"
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/repo"
	"github.com/jianglei12138/deshim/internal/resolve"
)

// buildFixtureProgram assembles a small, self-contained class graph that
// exercises each of the move planner's branches: a program interface with a
// default method (moved to a companion, with an abstract shim kept on the
// interface since it is not a bridge), a private instance helper it calls, a static
// factory method, and a library interface with one invoked static method
// (dispatch forwarder). There is no real class-file or dex reader behind
// this -- see the package doc for why that's intentional.
func buildFixtureProgram() (*repo.Repository, *resolve.Oracle) {
	r := repo.NewRepository()

	stringType := desc.Class("java.lang.String")
	greeterType := desc.Class("com.example.Greeter")
	collectionsType := desc.Class("com.example.lib.Collections")

	helperRef := desc.NewMethodRef(greeterType, "format", desc.NewProto(stringType, stringType))
	helper := desc.NewMethodDefinition(helperRef, desc.FlagPrivate, desc.NewStackMachineBody(nil))

	defaultRef := desc.NewMethodRef(greeterType, "greet", desc.NewProto(stringType, stringType))
	defaultBody := desc.NewStackMachineBody(nil)
	defaultMethod := desc.NewMethodDefinition(defaultRef, desc.FlagPublic, defaultBody)

	staticRef := desc.NewMethodRef(greeterType, "defaultGreeting", desc.NewProto(stringType))
	staticMethod := desc.NewMethodDefinition(staticRef, desc.FlagPublic.With(desc.FlagStatic), desc.NewStackMachineBody(nil))

	greeter := repo.NewInterface(greeterType, nil, repo.Program)
	greeter.VirtualMethods = []*desc.MethodDefinition{defaultMethod}
	greeter.DirectMethods = []*desc.MethodDefinition{helper, staticMethod}
	mustPublish(r, greeter)

	emptyListRef := desc.NewMethodRef(collectionsType, "emptyList", desc.NewProto(stringType))
	emptyList := desc.NewMethodDefinition(emptyListRef, desc.FlagPublic.With(desc.FlagStatic), desc.NewStackMachineBody(nil))

	collections := repo.NewInterface(collectionsType, nil, repo.Library)
	collections.DirectMethods = []*desc.MethodDefinition{emptyList}
	mustPublish(r, collections)

	return r, resolve.NewOracle(r)
}

func mustPublish(r *repo.Repository, c *repo.ClassDefinition) {
	if err := r.Publish(c); err != nil {
		panic(err)
	}
}

// invokedLiveness is the minimal LivenessOracle the fixture run needs: it
// reports the one library static method the fixture actually calls as
// invoked, so the dispatch-forwarder branch of the library-interface pass
// has something to do.
type invokedLiveness struct {
	invoked map[desc.MethodRef]bool
}

func (l invokedLiveness) IsPinned(desc.MethodRef) bool      { return false }
func (l invokedLiveness) IsInvoked(ref desc.MethodRef) bool { return l.invoked[ref] }

func desugarRun(ctx context.Context, r *repo.Repository, oracle *resolve.Oracle, opts config.Options) (desugar.Result, error) {
	collectionsType := desc.Class("com.example.lib.Collections")
	stringType := desc.Class("java.lang.String")
	emptyListRef := desc.NewMethodRef(collectionsType, "emptyList", desc.NewProto(stringType))

	return desugar.Run(ctx, desugar.Request{
		Repo:     r,
		Oracle:   oracle,
		Options:  opts,
		Liveness: invokedLiveness{invoked: map[desc.MethodRef]bool{emptyListRef: true}},
	})
}
