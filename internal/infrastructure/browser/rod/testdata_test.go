package rod_test

// ChatHTML mimics a chat page: the composer lives in a shadow root, the
// send button streams an answer into <main> word by word.
const ChatHTML = `<!DOCTYPE html>
<html>
<body>
	<main id="messages">
		<div class="assistant">Earlier answer</div>
	</main>
	<chat-composer></chat-composer>
	<button id="send-decoy" style="position:absolute; display:none">Send</button>
	<script>
		class Composer extends HTMLElement {
			constructor() {
				super();
				const root = this.attachShadow({ mode: 'open' });
				root.innerHTML = '<div id="prompt" contenteditable="true" style="min-height:20px"></div>' +
					'<button id="send" type="button">Send</button>';
				window.__events = [];
				const prompt = root.getElementById('prompt');
				['beforeinput', 'input'].forEach((t) => prompt.addEventListener(t, (e) => window.__events.push(t + ':' + e.inputType)));
				root.getElementById('send').addEventListener('click', () => {
					const q = prompt.textContent;
					const msg = document.createElement('div');
					msg.className = 'assistant result-streaming';
					document.getElementById('messages').appendChild(msg);
					const words = ('You asked: ' + q).split(' ');
					let i = 0;
					const timer = setInterval(() => {
						msg.textContent = words.slice(0, ++i).join(' ');
						if (i >= words.length) {
							clearInterval(timer);
							msg.classList.remove('result-streaming');
						}
					}, 60);
				});
			}
		}
		customElements.define('chat-composer', Composer);
	</script>
</body>
</html>`

// FormHTML has no button candidates; only the enclosing form can submit.
const FormHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="f" onsubmit="event.preventDefault(); const v = document.getElementById('q').value; setTimeout(() => { document.getElementById('out').textContent = 'got ' + v; }, 150);">
		<textarea id="q"></textarea>
	</form>
	<div id="out" class="assistant"></div>
</body>
</html>`
