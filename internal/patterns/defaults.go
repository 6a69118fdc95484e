package patterns

// DefaultIgnorePatterns is the built-in ignore tier: version control metadata,
// dependency and build output directories, lockfiles, editor state and secrets.
var DefaultIgnorePatterns = []string{
	".git/",
	".svn/",
	".hg/",
	"node_modules/",
	"bower_components/",
	"jspm_packages/",
	".pnp.*",
	".yarn/",
	"dist/",
	"build/",
	"out/",
	"coverage/",
	".nyc_output/",
	".next/",
	".nuxt/",
	".svelte-kit/",
	".turbo/",
	".cache/",
	".parcel-cache/",
	"__pycache__/",
	"*.pyc",
	".pytest_cache/",
	".venv/",
	".tox/",
	"target/",
	".gradle/",
	".idea/",
	".vscode/",
	".DS_Store",
	"Thumbs.db",
	"*.log",
	".env",
	".env.*",
	"package-lock.json",
	"npm-shrinkwrap.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"bun.lockb",
	"composer.lock",
	"Gemfile.lock",
	"Cargo.lock",
	"poetry.lock",
	"Pipfile.lock",
	"go.sum",
}
